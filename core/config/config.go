package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port     int
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MicrosoftConfig holds the Azure app registration used for the Outlook
// integration. RedirectPath is appended to BackendBaseURL to form the OAuth
// redirect URI; BasePath is the Microsoft Graph API root.
type MicrosoftConfig struct {
	ClientID       string
	ClientSecret   string
	Tenant         string
	BackendBaseURL string
	RedirectPath   string
	BasePath       string
}

type CryptoConfig struct {
	// TokenKey is a base64-encoded 32-byte key used to encrypt stored
	// Outlook tokens. Empty disables encryption at rest.
	TokenKey string
	// StateSecret signs the OAuth state parameter.
	StateSecret string
}

type AWSConfig struct {
	Region           string
	AttachmentBucket string
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Microsoft MicrosoftConfig
	Crypto    CryptoConfig
	AWS       AWSConfig
}

var (
	instance *Config
	mu       sync.RWMutex
)

// RedirectURI is the fully qualified OAuth callback URL.
func (m MicrosoftConfig) RedirectURI() string {
	return m.BackendBaseURL + "/" + m.RedirectPath
}

// Load reads configuration from the environment (and a .env file when
// present) and fails fast when a required value is absent.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "outlook_sample")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MICROSOFT_TENANT", "common")
	v.SetDefault("MICROSOFT_REDIRECT_PATH", "auth/microsoft/callback")
	v.SetDefault("MICROSOFT_BASE_PATH", "https://graph.microsoft.com/v1.0")
	v.SetDefault("AWS_REGION", "eu-central-1")
	v.SetDefault("ATTACHMENT_BUCKET", "")
	v.SetDefault("TOKEN_ENCRYPTION_KEY", "")

	for _, key := range []string{"MICROSOFT_CLIENT_ID", "MICROSOFT_CLIENT_SECRET", "BACKEND_BASE_URL"} {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", key)
		}
	}

	stateSecret := v.GetString("STATE_SIGNING_SECRET")
	if stateSecret == "" {
		// Acceptable for a sample: the client secret is already required.
		stateSecret = v.GetString("MICROSOFT_CLIENT_SECRET")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetInt("SERVER_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Microsoft: MicrosoftConfig{
			ClientID:       v.GetString("MICROSOFT_CLIENT_ID"),
			ClientSecret:   v.GetString("MICROSOFT_CLIENT_SECRET"),
			Tenant:         v.GetString("MICROSOFT_TENANT"),
			BackendBaseURL: v.GetString("BACKEND_BASE_URL"),
			RedirectPath:   v.GetString("MICROSOFT_REDIRECT_PATH"),
			BasePath:       v.GetString("MICROSOFT_BASE_PATH"),
		},
		Crypto: CryptoConfig{
			TokenKey:    v.GetString("TOKEN_ENCRYPTION_KEY"),
			StateSecret: stateSecret,
		},
		AWS: AWSConfig{
			Region:           v.GetString("AWS_REGION"),
			AttachmentBucket: v.GetString("ATTACHMENT_BUCKET"),
		},
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded configuration; it panics before Load succeeds.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Load")
	}
	return cfg
}

// GetSafe returns the loaded configuration and whether it is initialized.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
