package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration parsed from environment variables.
// An empty DBConnString selects the file-backed mirror storage.
type Config struct {
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"`
	BackendBaseURL string `envconfig:"BACKEND_BASE_URL" default:"http://localhost:9090/api"`
	StorageDir     string `envconfig:"STORAGE_DIR" default:"./data"`
	DBConnString   string `envconfig:"DB_DSN" default:""`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Grace period before reloading the cart after a successful remote add,
	// to let the server settle. Heuristic, not a guarantee.
	ReloadGraceMS int `envconfig:"CART_RELOAD_GRACE_MS" default:"500"`

	PaymentKey      string `envconfig:"PAYMENT_KEY" default:"rzp_test_Rp922yQaqHsoA8"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"INR"`
	PaymentTheme    string `envconfig:"PAYMENT_THEME" default:"#D6A99D"`
	StoreName       string `envconfig:"STORE_NAME" default:"RevCart"`

	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
	HTTPTimeoutSeconds     int `envconfig:"HTTP_TIMEOUT_SECONDS" default:"15"`
}

// Load builds Config with defaults, overridden by environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ReloadGrace() time.Duration {
	return time.Duration(c.ReloadGraceMS) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
