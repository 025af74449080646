package mpesa

import (
	"encoding/base64"
	"time"
)

// Timestamp formats t the way the Daraja API expects: YYYYMMDDHHMMSS,
// 14 zero-padded digits in local time.
func Timestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// Password derives the STK push password: base64(shortcode + passkey + timestamp).
// This is the provider's mandated encoding, not a hash.
func Password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
