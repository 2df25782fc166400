package handlers

import (
	"ezschedule/internal/engine"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler держит зависимости HTTP-слоя: хэндл базы, кэш и движок очереди.
// Всё передаётся из main, пакетных синглтонов нет.
type Handler struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Engine *engine.Engine
}

func New(db *gorm.DB, rdb *redis.Client, eng *engine.Engine) *Handler {
	return &Handler{DB: db, Redis: rdb, Engine: eng}
}
