package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Mpesa        MpesaConfig        `mapstructure:"mpesa"`
	TMDB         TMDBConfig         `mapstructure:"tmdb"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// MpesaConfig holds the Daraja credentials. All secret fields are required;
// Validate refuses to start the server without them.
type MpesaConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	AuthURL         string        `mapstructure:"auth_url"`
	ConsumerKey     string        `mapstructure:"consumer_key"`
	ConsumerSecret  string        `mapstructure:"consumer_secret"`
	ShortCode       string        `mapstructure:"short_code"`
	Passkey         string        `mapstructure:"passkey"`
	CallbackBaseURL string        `mapstructure:"callback_base_url"` // externally reachable, callback is BaseURL + /api/v1/payments/callback
	ReconcileEvery  time.Duration `mapstructure:"reconcile_every"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
}

type TMDBConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type SubscriptionConfig struct {
	// Payments at or above PremiumCutoff buy the premium plan, below it basic.
	PremiumCutoff float64 `mapstructure:"premium_cutoff"`
}

// Load reads config.yaml if present and overlays environment variables
// (SERVER_PORT, MPESA_CONSUMER_KEY, ...). Missing required secrets are a
// startup error, not a request-time one.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about. Keys with
	// no default below must be bound explicitly or env-only deployments
	// would never see them.
	for _, key := range []string{
		"jwt.secret",
		"redis.password",
		"mpesa.consumer_key",
		"mpesa.consumer_secret",
		"mpesa.short_code",
		"mpesa.passkey",
		"mpesa.callback_base_url",
		"tmdb.access_token",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.dsn", "lanprime:lanprime@tcp(localhost:3306)/lanprime?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.expiry", 24*time.Hour)
	v.SetDefault("jwt.issuer", "lanprime")
	v.SetDefault("mpesa.base_url", "https://sandbox.safaricom.co.ke/mpesa")
	v.SetDefault("mpesa.auth_url", "https://sandbox.safaricom.co.ke/oauth/v1/generate")
	v.SetDefault("mpesa.reconcile_every", time.Minute)
	v.SetDefault("mpesa.stale_after", 10*time.Minute)
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.cache_ttl", 5*time.Minute)
	v.SetDefault("subscription.premium_cutoff", 1000)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required secret is present.
func (c *Config) Validate() error {
	required := []struct{ name, val string }{
		{"MPESA_CONSUMER_KEY", c.Mpesa.ConsumerKey},
		{"MPESA_CONSUMER_SECRET", c.Mpesa.ConsumerSecret},
		{"MPESA_SHORT_CODE", c.Mpesa.ShortCode},
		{"MPESA_PASSKEY", c.Mpesa.Passkey},
		{"MPESA_CALLBACK_BASE_URL", c.Mpesa.CallbackBaseURL},
		{"TMDB_ACCESS_TOKEN", c.TMDB.AccessToken},
		{"JWT_SECRET", c.JWT.Secret},
	}
	var missing []string
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
