package storage

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDatabase открывает соединение с Postgres по переменным окружения DB_*.
// Хэндл возвращается вызывающему, время жизни соединения контролирует main.
func ConnectDatabase() (*gorm.DB, error) {
	return connect("DB")
}

// ConnectTestingDatabase открывает соединение с тестовой базой (TEST_DB_*).
func ConnectTestingDatabase() (*gorm.DB, error) {
	return connect("TEST_DB")
}

func connect(prefix string) (*gorm.DB, error) {
	host := os.Getenv(prefix + "_HOST")
	port := os.Getenv(prefix + "_PORT")
	user := os.Getenv(prefix + "_USER")
	password := os.Getenv(prefix + "_PASSWORD")
	dbname := os.Getenv(prefix + "_NAME")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	return db, nil
}

// NewRedisClient создаёт клиент Redis по переменной REDIS_ADDR.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}
