package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Storage wraps the relational database holding users, promocodes and servers
type Storage struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// New opens the Postgres database and migrates the schema
func New(dsn string, logger *logrus.Logger) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Promocode{}, &Server{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database connected and migrated")

	return &Storage{
		db:     db,
		logger: logger,
	}, nil
}
