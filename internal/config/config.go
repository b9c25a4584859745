package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	StorageDriver   string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CORSOrigins     []string
	// PublicDir is served at /public; product images live under it.
	PublicDir       string

	Redis   RedisConfig
	Order   OrderConfig
	Payment PaymentConfig
	Log     LogConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

type OrderConfig struct {
	// StatusPolicy is "strict" (transition table enforced) or "permissive".
	StatusPolicy string
}

type PaymentConfig struct {
	APIURL        string
	StoreID       int
	AuthKey       string
	Mode          string
	Currency      string
	SuccessURL    string
	FailureURL    string
	CancelURL     string
	WebhookSecret string
	Timeout       time.Duration
}

type LogConfig struct {
	Level    string
	Encoding string
}

// Load reads .env (if present), an optional CONFIG_FILE and the process
// environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Port:            v.GetString("PORT"),
		MongoURI:        strings.TrimSpace(v.GetString("MONGO_URI")),
		DBName:          v.GetString("DB_NAME"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  positiveDuration(v.GetInt("ACCESS_TOKEN_TTL"), 20, time.Minute),
		RefreshTokenTTL: positiveDuration(v.GetInt("REFRESH_TOKEN_TTL"), 7, 24*time.Hour),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		PublicDir:       strings.TrimSpace(v.GetString("PUBLIC_DIR")),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			LockTTL:  v.GetDuration("LOCK_TTL"),
		},
		Order: OrderConfig{
			StatusPolicy: strings.ToLower(v.GetString("ORDER_STATUS_POLICY")),
		},
		Payment: PaymentConfig{
			APIURL:        v.GetString("PAYMENT_API_URL"),
			StoreID:       v.GetInt("PAYMENT_STORE_ID"),
			AuthKey:       v.GetString("PAYMENT_AUTH_KEY"),
			Mode:          strings.ToLower(v.GetString("PAYMENT_MODE")),
			Currency:      v.GetString("PAYMENT_CURRENCY"),
			SuccessURL:    v.GetString("PAYMENT_RETURN_SUCCESS_URL"),
			FailureURL:    v.GetString("PAYMENT_RETURN_FAILURE_URL"),
			CancelURL:     v.GetString("PAYMENT_RETURN_CANCEL_URL"),
			WebhookSecret: v.GetString("PAYMENT_WEBHOOK_SECRET"),
			Timeout:       v.GetDuration("PAYMENT_TIMEOUT"),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
	}

	AppEnv = cfg
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_NAME", "heremarket")
	v.SetDefault("STORAGE_DRIVER", "mongo")
	v.SetDefault("ACCESS_TOKEN_TTL", 20)
	v.SetDefault("REFRESH_TOKEN_TTL", 7)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("LOCK_TTL", "5s")
	v.SetDefault("ORDER_STATUS_POLICY", "strict")
	v.SetDefault("PAYMENT_MODE", "sandbox")
	v.SetDefault("PAYMENT_CURRENCY", "TRY")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
}

func positiveDuration(value, defaultValue int, unit time.Duration) time.Duration {
	if value > 0 {
		return time.Duration(value) * unit
	}
	return time.Duration(defaultValue) * unit
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
