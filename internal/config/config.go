package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// MongoDB holds message attachments (GridFS)
	MongoDB MongoDBConfig `json:"mongodb" mapstructure:"mongodb"`

	Redis RedisConfig `json:"redis" mapstructure:"redis"`

	// NATS carries the realtime change feed
	NATS NATSConfig `json:"nats" mapstructure:"nats"`

	// Firebase Configuration
	Firebase FirebaseConfig `json:"firebase" mapstructure:"firebase"`

	// Email Configuration (optional)
	Email EmailConfig `json:"email" mapstructure:"email"`

	// Notification Configuration
	Notification NotificationConfig `json:"notification" mapstructure:"notification"`

	Chat ChatConfig `json:"chat" mapstructure:"chat"`

	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host             string `json:"host" mapstructure:"host"`
	ChatServicePort  string `json:"chat_service_port" mapstructure:"chat_service_port"`
	ChatGRPCPort     string `json:"chat_grpc_port" mapstructure:"chat_grpc_port"`
	NotifServicePort string `json:"notif_service_port" mapstructure:"notif_service_port"`
	MediaServicePort string `json:"media_service_port" mapstructure:"media_service_port"`
	MediaBaseURL     string `json:"media_base_url" mapstructure:"media_base_url"`
	ReadTimeout      int    `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout     int    `json:"write_timeout" mapstructure:"write_timeout"`
	Environment      string `json:"environment" mapstructure:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver" mapstructure:"driver"` // mysql, postgres
	Host         string `json:"host" mapstructure:"host"`
	Port         string `json:"port" mapstructure:"port"`
	Username     string `json:"username" mapstructure:"username"`
	Password     string `json:"password" mapstructure:"password"`
	DatabaseName string `json:"database_name" mapstructure:"database_name"`
	SSLMode      string `json:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" mapstructure:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
}

type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	PoolSize int    `json:"pool_size" mapstructure:"pool_size"`
}

type NATSConfig struct {
	URL           string        `json:"url" mapstructure:"url"`
	Enabled       bool          `json:"enabled" mapstructure:"enabled"`
	MaxReconnects int           `json:"max_reconnects" mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `json:"reconnect_wait" mapstructure:"reconnect_wait"`
}

// FirebaseConfig contains Firebase Cloud Messaging configuration
type FirebaseConfig struct {
	ProjectID           string `json:"project_id" mapstructure:"project_id"`
	CredentialsFilePath string `json:"credentials_file_path" mapstructure:"credentials_file_path"`
	Enabled             bool   `json:"enabled" mapstructure:"enabled"`
}

// EmailConfig contains the transactional email (Resend) configuration
type EmailConfig struct {
	APIKey    string `json:"api_key" mapstructure:"api_key"`
	FromEmail string `json:"from_email" mapstructure:"from_email"`
	FromName  string `json:"from_name" mapstructure:"from_name"`
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
}

// NotificationConfig contains notification system configuration
type NotificationConfig struct {
	Workers int    `json:"workers" mapstructure:"workers"` // asynq worker concurrency
	Queue   string `json:"queue" mapstructure:"queue"`
	AppURL  string `json:"app_url" mapstructure:"app_url"` // base for deep links
}

// ChatConfig holds the messaging timings and limits
type ChatConfig struct {
	MaxMessageLength       int           `json:"max_message_length" mapstructure:"max_message_length"`
	TypingTimeout          time.Duration `json:"typing_timeout" mapstructure:"typing_timeout"`
	TypingStaleAfter       time.Duration `json:"typing_stale_after" mapstructure:"typing_stale_after"`
	TypingCleanupInterval  time.Duration `json:"typing_cleanup_interval" mapstructure:"typing_cleanup_interval"`
	TypingStore            string        `json:"typing_store" mapstructure:"typing_store"` // sql, redis
	IncrementalMerge       bool          `json:"incremental_merge" mapstructure:"incremental_merge"`
	SendRatePerMinute      int           `json:"send_rate_per_minute" mapstructure:"send_rate_per_minute"`
	SendBurst              int           `json:"send_burst" mapstructure:"send_burst"`
	KeystrokeRatePerMinute int           `json:"keystroke_rate_per_minute" mapstructure:"keystroke_rate_per_minute"`
	KeystrokeBurst         int           `json:"keystroke_burst" mapstructure:"keystroke_burst"`
	MaxUploadBytes         int64         `json:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

type AuthConfig struct {
	JWTSecret string `json:"-" mapstructure:"jwt_secret"`
	Issuer    string `json:"issuer" mapstructure:"issuer"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // json, text
}

// LoadConfig reads .env (if any), the environment and an optional YAML file
// named by CONFIG_FILE. Values from the file win over the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:             getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ChatServicePort:  getEnvOrDefault("CHAT_SERVICE_PORT", "7003"),
			ChatGRPCPort:     getEnvOrDefault("CHAT_GRPC_PORT", "7013"),
			NotifServicePort: getEnvOrDefault("NOTIF_SERVICE_PORT", "7004"),
			MediaServicePort: getEnvOrDefault("MEDIA_SERVICE_PORT", "8080"),
			ReadTimeout:      getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:     getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			Environment:      getEnvOrDefault("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:       getEnvOrDefault("DB_DRIVER", "postgres"),
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "5432"),
			Username:     getEnvOrDefault("DB_USER", "camerpulse"),
			Password:     getEnvOrDefault("DB_PASSWORD", "camerpulse"),
			DatabaseName: getEnvOrDefault("DB_NAME", "camerpulse"),
			SSLMode:      getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DATABASE", "camerpulse"),
			Enabled:  getEnvBool("MONGO_ENABLED", false),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		NATS: NATSConfig{
			URL:           getEnvOrDefault("NATS_URL", "nats://localhost:4222"),
			Enabled:       getEnvBool("NATS_ENABLED", false),
			MaxReconnects: getEnvInt("NATS_MAX_RECONNECTS", 60),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Firebase: FirebaseConfig{
			ProjectID:           getEnvOrDefault("FIREBASE_PROJECT_ID", ""),
			CredentialsFilePath: getEnvOrDefault("FIREBASE_CREDENTIALS_PATH", ""),
			Enabled:             getEnvBool("FIREBASE_ENABLED", false),
		},
		Email: EmailConfig{
			APIKey:    getEnvOrDefault("RESEND_API_KEY", ""),
			FromEmail: getEnvOrDefault("FROM_EMAIL", "noreply@camerpulse.cm"),
			FromName:  getEnvOrDefault("FROM_NAME", "CamerPulse"),
			Enabled:   getEnvBool("EMAIL_ENABLED", false),
		},
		Notification: NotificationConfig{
			Workers: getEnvInt("NOTIF_WORKERS", 5),
			Queue:   getEnvOrDefault("NOTIF_QUEUE", "notifications"),
			AppURL:  getEnvOrDefault("APP_URL", "https://camerpulse.cm"),
		},
		Chat: ChatConfig{
			MaxMessageLength:       getEnvInt("CHAT_MAX_MESSAGE_LENGTH", 4000),
			TypingTimeout:          getEnvDuration("CHAT_TYPING_TIMEOUT", 3*time.Second),
			TypingStaleAfter:       getEnvDuration("CHAT_TYPING_STALE_AFTER", 30*time.Second),
			TypingCleanupInterval:  getEnvDuration("CHAT_TYPING_CLEANUP_INTERVAL", 30*time.Second),
			TypingStore:            getEnvOrDefault("TYPING_STORE", "sql"),
			IncrementalMerge:       getEnvBool("CHAT_INCREMENTAL_MERGE", false),
			SendRatePerMinute:      getEnvInt("CHAT_SEND_RATE_PER_MINUTE", 60),
			SendBurst:              getEnvInt("CHAT_SEND_BURST", 10),
			KeystrokeRatePerMinute: getEnvInt("CHAT_KEYSTROKE_RATE_PER_MINUTE", 600),
			KeystrokeBurst:         getEnvInt("CHAT_KEYSTROKE_BURST", 30),
			MaxUploadBytes:         int64(getEnvInt("CHAT_MAX_UPLOAD_BYTES", 10<<20)),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
			Issuer:    getEnvOrDefault("JWT_ISSUER", "camerpulse"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	if cfg.Server.MediaBaseURL == "" {
		cfg.Server.MediaBaseURL = getEnvOrDefault("MEDIA_BASE_URL",
			fmt.Sprintf("http://localhost:%s/media/", cfg.Server.MediaServicePort))
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			log.Printf("Failed to read config file %s: %v", path, err)
		}
	}

	return cfg
}

// overlayFile unmarshals a YAML file on top of the already populated config.
// Keys missing from the file keep their current values.
func (cfg *Config) overlayFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}

	switch cfg.Database.Driver {
	case "mysql":
		if cfg.Database.Port == "" {
			cfg.Database.Port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DatabaseName,
		)
	default:
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		sslMode := cfg.Database.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.DatabaseName,
			sslMode,
		)
	}
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s",
		cfg.MongoDB.Username, cfg.MongoDB.Password, cfg.MongoDB.Host, cfg.MongoDB.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s: %q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
	}
	return defaultValue
}
