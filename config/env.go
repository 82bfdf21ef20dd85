package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL     = "http://localhost:8081"
	defaultAPITimeoutMS   = "5000"
	defaultAppEnv         = "local"
	defaultLogLevel       = "debug"
	defaultRedisChannel   = "storefront:toasts"
	defaultMockAddr       = ":8081"
	defaultMockOrigins    = "*"
	defaultJWTSecret      = "change-me-in-production"
	defaultConfigFilePath = "config/app.json"
	defaultDotEnvPath     = ".env"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()

	validate = validator.New()
)

// ClientConfig is the typed view of everything the API client needs.
type ClientConfig struct {
	BaseURL      string `env:"API_BASE_URL"         validate:"required,url"`
	TimeoutMS    int    `env:"API_TIMEOUT_MS"       validate:"gte=0"`
	WebhookURL   string `env:"NOTIFY_WEBHOOK_URL"   validate:"omitempty,url"`
	RedisAddr    string `env:"NOTIFY_REDIS_ADDR"`
	RedisChannel string `env:"NOTIFY_REDIS_CHANNEL"`
}

// Timeout returns the per-request timeout. Zero falls back to five seconds.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles(defaultConfigFilePath, defaultDotEnvPath)
	})
	return loadErr
}

// LoadFrom replaces the current values with defaults merged with the given
// JSON config file and .env file. Missing files are ignored. After LoadFrom,
// Load is a no-op.
func LoadFrom(configPath, envPath string) error {
	loadOnce.Do(func() {})
	return loadFromFiles(configPath, envPath)
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeProcessEnv(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

// Client decodes and validates the client configuration.
func Client() (ClientConfig, error) {
	_ = Load()

	mu.RLock()
	snapshot := make(map[string]string, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	mu.RUnlock()

	var cfg ClientConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: snapshot}); err != nil {
		return ClientConfig{}, fmt.Errorf("config: decode client config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config: invalid client config: %w", err)
	}
	return cfg, nil
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL":         defaultAPIBaseURL,
		"API_TIMEOUT_MS":       defaultAPITimeoutMS,
		"APP_ENV":              defaultAppEnv,
		"LOG_LEVEL":            defaultLogLevel,
		"NOTIFY_WEBHOOK_URL":   "",
		"NOTIFY_REDIS_ADDR":    "",
		"NOTIFY_REDIS_CHANNEL": defaultRedisChannel,
		"MOCK_ADDR":            defaultMockAddr,
		"MOCK_CORS_ORIGINS":    defaultMockOrigins,
		"JWT_SECRET":           defaultJWTSecret,
	}
}

func APIBaseURL() string {
	_ = Load()
	return get("API_BASE_URL", defaultAPIBaseURL)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func LogLevel() string {
	_ = Load()
	return get("LOG_LEVEL", defaultLogLevel)
}

func MockAddr() string {
	_ = Load()
	return get("MOCK_ADDR", defaultMockAddr)
}

// MockCORSOrigins is the comma-separated MOCK_CORS_ORIGINS list.
func MockCORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("MOCK_CORS_ORIGINS", defaultMockOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = fmt.Sprintf("%v", v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	parsed, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range parsed {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

// mergeProcessEnv lets real environment variables override files for the
// keys the application knows about.
func mergeProcessEnv(out map[string]string) {
	for key := range defaultValues() {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
