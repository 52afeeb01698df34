package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultBehavior(t *testing.T) {
	clearTestEnvVars(t)

	config := LoadConfig()
	require.NotNil(t, config)

	// database defaults
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, "5432", config.Database.Port)
	assert.Equal(t, 25, config.Database.MaxOpenConns)
	assert.Equal(t, 5, config.Database.MaxIdleConns)

	// server defaults
	assert.Equal(t, "7003", config.Server.ChatServicePort)
	assert.Equal(t, "7004", config.Server.NotifServicePort)
	assert.Equal(t, "8080", config.Server.MediaServicePort)
	assert.Contains(t, config.Server.MediaBaseURL, "/media/")

	// chat timings
	assert.Equal(t, 3*time.Second, config.Chat.TypingTimeout)
	assert.Equal(t, 30*time.Second, config.Chat.TypingStaleAfter)
	assert.Equal(t, 30*time.Second, config.Chat.TypingCleanupInterval)
	assert.Equal(t, 4000, config.Chat.MaxMessageLength)
	assert.Equal(t, "sql", config.Chat.TypingStore)
	assert.False(t, config.Chat.IncrementalMerge)

	assert.False(t, config.NATS.Enabled)
	assert.False(t, config.Firebase.Enabled)
	assert.False(t, config.Email.Enabled)
	assert.Equal(t, 5, config.Notification.Workers)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadConfig_WithEnvironmentOverrides(t *testing.T) {
	clearTestEnvVars(t)

	testEnvVars := map[string]string{
		"DB_DRIVER":           "mysql",
		"DB_HOST":             "test-db-host",
		"DB_PORT":             "3307",
		"DB_USER":             "test-user",
		"MONGO_HOST":          "test-mongo",
		"MONGO_ENABLED":       "true",
		"CHAT_SERVICE_PORT":   "7010",
		"FIREBASE_PROJECT_ID": "test-firebase",
		"FIREBASE_ENABLED":    "true",
		"EMAIL_ENABLED":       "true",
		"CHAT_TYPING_TIMEOUT": "5s",
		"TYPING_STORE":        "redis",
		"NATS_ENABLED":        "yes-please",
		"LOG_LEVEL":           "debug",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config := LoadConfig()

	assert.Equal(t, "mysql", config.Database.Driver)
	assert.Equal(t, "test-db-host", config.Database.Host)
	assert.Equal(t, "3307", config.Database.Port)
	assert.Equal(t, "test-user", config.Database.Username)
	assert.Equal(t, "test-mongo", config.MongoDB.Host)
	assert.True(t, config.MongoDB.Enabled)
	assert.Equal(t, "7010", config.Server.ChatServicePort)
	assert.Equal(t, "test-firebase", config.Firebase.ProjectID)
	assert.True(t, config.Firebase.Enabled)
	assert.True(t, config.Email.Enabled)
	assert.Equal(t, 5*time.Second, config.Chat.TypingTimeout)
	assert.Equal(t, "redis", config.Chat.TypingStore)
	// unparseable bool falls back to default
	assert.False(t, config.NATS.Enabled)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	clearTestEnvVars(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
chat:
  typing_timeout: 1500ms
  max_message_length: 280
nats:
  enabled: true
  url: nats://broker:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	config := LoadConfig()

	assert.Equal(t, 1500*time.Millisecond, config.Chat.TypingTimeout)
	assert.Equal(t, 280, config.Chat.MaxMessageLength)
	assert.True(t, config.NATS.Enabled)
	assert.Equal(t, "nats://broker:4222", config.NATS.URL)
	// untouched keys keep env/default values
	assert.Equal(t, 30*time.Second, config.Chat.TypingStaleAfter)
	assert.Equal(t, "7003", config.Server.ChatServicePort)
}

func TestDSN_Generation(t *testing.T) {
	tests := []struct {
		name     string
		db       DatabaseConfig
		expected string
	}{
		{
			name: "mysql",
			db: DatabaseConfig{
				Driver:       "mysql",
				Host:         "test-host",
				Port:         "3307",
				Username:     "testuser",
				Password:     "testpass",
				DatabaseName: "testdb",
			},
			expected: "testuser:testpass@tcp(test-host:3307)/testdb?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql with empty host and port",
			db: DatabaseConfig{
				Driver:       "mysql",
				Username:     "testuser",
				Password:     "testpass",
				DatabaseName: "testdb",
			},
			expected: "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "postgres",
			db: DatabaseConfig{
				Driver:       "postgres",
				Host:         "pg",
				Username:     "u",
				Password:     "p",
				DatabaseName: "d",
			},
			expected: "host=pg port=5432 user=u password=p dbname=d sslmode=disable TimeZone=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Database: tt.db}
			assert.Equal(t, tt.expected, config.DSN())
		})
	}
}

func TestGetMongoURI(t *testing.T) {
	withAuth := &Config{MongoDB: MongoDBConfig{Host: "mongo-host", Port: "27017", Username: "u", Password: "p"}}
	assert.Equal(t, "mongodb://u:p@mongo-host:27017", withAuth.GetMongoURI())

	withoutAuth := &Config{MongoDB: MongoDBConfig{Host: "mongo-host", Port: "27017"}}
	assert.Equal(t, "mongodb://mongo-host:27017", withoutAuth.GetMongoURI())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_KEY", "test_value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("INVALID_INT", "not-a-number")
	t.Setenv("TEST_DURATION", "250ms")

	assert.Equal(t, "test_value", getEnvOrDefault("TEST_KEY", "default_value"))
	assert.Equal(t, "default_value", getEnvOrDefault("NON_EXISTENT_KEY", "default_value"))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 10))
	assert.Equal(t, 10, getEnvInt("INVALID_INT", 10))
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("NON_EXISTENT_DURATION", time.Second))
}

func clearTestEnvVars(t *testing.T) {
	envKeys := []string{
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"MONGO_HOST", "MONGO_PORT", "MONGO_ENABLED",
		"CHAT_SERVICE_PORT", "NOTIF_SERVICE_PORT", "MEDIA_SERVICE_PORT", "MEDIA_BASE_URL",
		"FIREBASE_PROJECT_ID", "FIREBASE_ENABLED", "EMAIL_ENABLED",
		"CHAT_TYPING_TIMEOUT", "CHAT_TYPING_STALE_AFTER", "CHAT_MAX_MESSAGE_LENGTH", "TYPING_STORE",
		"NATS_ENABLED", "NATS_URL", "LOG_LEVEL", "CONFIG_FILE",
	}
	for _, key := range envKeys {
		// t.Setenv restores the previous value after the test
		t.Setenv(key, "")
	}
}
