package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Mail      MailConfig
	Recaptcha RecaptchaConfig
	CORS      CORSConfig
	App       AppConfig
}

type ServerConfig struct {
	Port        string
	CallTimeout time.Duration
	// TrustProxy makes client IPs come from X-Forwarded-For.
	TrustProxy bool
}

// DatabaseConfig selects and configures the persistent store.
// Driver is "postgres" or "mongo".
type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// StorageConfig configures the object store used for project images.
// Backend is "s3" or "local".
type StorageConfig struct {
	Backend         string
	Folder          string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKey       string
	SecretKey       string
	PublicBaseURL   string
	UploadDir       string
	UploadURLPrefix string
	OrphanSweepSpec string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type MailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	ContactEmail string
}

type RecaptchaConfig struct {
	SecretKey string
	MinScore  float64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	// .env.<env>.local wins over .env; both are optional
	for _, f := range []string{".env." + env + ".local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: could not load %s: %v", f, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CallTimeout: getEnvAsDuration("CALL_TIMEOUT", 10*time.Second),
			TrustProxy:  getEnvAsBool("TRUST_PROXY", false),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "portfolio"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", getEnv("MONGODB_URI", "")),
			Database: getEnv("MONGO_DATABASE", "portfolio"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(getEnv("OBJECT_STORE", "local")),
			Folder:          getEnv("UPLOAD_FOLDER", "portfolio"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKey:       getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey:       getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
			UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
			OrphanSweepSpec: getEnv("ORPHAN_SWEEP_SPEC", "0 */15 * * * *"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Mail: MailConfig{
			Host:         getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			User:         getEnv("SMTP_USER", ""),
			Password:     getEnv("SMTP_PASSWORD", ""),
			ContactEmail: getEnv("CONTACT_EMAIL", getEnv("SMTP_USER", "")),
		},
		Recaptcha: RecaptchaConfig{
			SecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
			MinScore:  getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0.5),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CLIENT_URL", "http://localhost:5000")),
		},
		App: AppConfig{
			Environment: env,
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST is required")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Backend {
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE=s3")
		}
	case "local":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when OBJECT_STORE=local")
		}
	default:
		return fmt.Errorf("unsupported OBJECT_STORE %q", c.Storage.Backend)
	}

	if c.Auth.JWTSecret == "" {
		if c.App.Environment == "production" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
		c.Auth.JWTSecret = "dev-secret-change-me"
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
