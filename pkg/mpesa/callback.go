package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedCallback is returned when the webhook body does not contain
// the Body.stkCallback envelope.
var ErrMalformedCallback = errors.New("mpesa: malformed callback payload")

// CallbackEnvelope mirrors the nested structure the provider POSTs to the
// callback URL after the payer confirms or cancels the push.
type CallbackEnvelope struct {
	Body struct {
		STKCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []MetadataItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// MetadataItem is a name/value pair from CallbackMetadata. Value may be a
// string (receipt, phone) or a number (amount, date), so it stays raw here.
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// CallbackResult is the flattened outcome of a provider callback.
type CallbackResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	Amount            float64
	PhoneNumber       string
	TransactionDate   string
}

// Success reports whether the provider's result code is the success sentinel.
func (r CallbackResult) Success() bool { return r.ResultCode == 0 }

// ParseCallback decodes a raw webhook body and flattens the metadata items.
// Metadata is only present on successful payments.
func ParseCallback(raw []byte) (*CallbackResult, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	cb := env.Body.STKCallback
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", ErrMalformedCallback)
	}
	res := &CallbackResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		MerchantRequestID: cb.MerchantRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			_ = json.Unmarshal(item.Value, &res.ReceiptNumber)
		case "Amount":
			_ = json.Unmarshal(item.Value, &res.Amount)
		case "PhoneNumber":
			// arrives as a number; keep the digits as a string
			var n json.Number
			if json.Unmarshal(item.Value, &n) == nil {
				res.PhoneNumber = n.String()
			} else {
				_ = json.Unmarshal(item.Value, &res.PhoneNumber)
			}
		case "TransactionDate":
			var n json.Number
			if json.Unmarshal(item.Value, &n) == nil {
				res.TransactionDate = n.String()
			} else {
				_ = json.Unmarshal(item.Value, &res.TransactionDate)
			}
		}
	}
	return res, nil
}
