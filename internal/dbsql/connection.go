package dbsql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"camerpulse/internal/config"
)

// Open returns a GORM DB connected to MySQL or Postgres depending on the
// configured driver.
func Open(cnf *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cnf)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cnf.Logging.Level == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", cnf.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(cnf.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Printf("✅ Connected to %s successfully", cnf.Database.Driver)

	return db, nil
}

func dialectorFor(cnf *config.Config) (gorm.Dialector, error) {
	switch cnf.Database.Driver {
	case "mysql":
		return mysql.Open(cnf.DSN()), nil
	case "postgres", "":
		return postgres.Open(cnf.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Database.Driver)
	}
}

// ChatModels are the tables owned by the chat service.
func ChatModels() []interface{} {
	return []interface{}{
		&Conversation{},
		&ConversationParticipant{},
		&Message{},
		&MessageReadStatus{},
		&TypingIndicator{},
		&Profile{},
	}
}

// NotificationModels are the tables owned by the notification service.
func NotificationModels() []interface{} {
	return []interface{}{
		&NotificationPreference{},
		&Device{},
		&Notification{},
	}
}
