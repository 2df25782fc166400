package tasks

import (
	"os"
	"testing"
	"time"

	"ezschedule/internal/engine"
	"ezschedule/internal/models"
	"ezschedule/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("TEST_DB_HOST") == "" {
		_ = godotenv.Load("../../.env")
	}
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST не задан, интеграционный тест пропущен")
	}

	db, err := storage.ConnectTestingDatabase()
	require.NoError(t, err, "Ошибка подключения к тестовой базе")

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}, &models.Slot{}, &models.Entry{}, &models.ConsultForm{}),
		"Ошибка при миграции")
	db.Exec("TRUNCATE TABLE users, groups, slots, entries, consult_forms, group_members RESTART IDENTITY CASCADE;")

	return db
}

func createExpiredSlot(t *testing.T, db *gorm.DB, isClosed bool) models.Slot {
	t.Helper()
	host := models.User{Name: "Мария", Surname: "Петрова", Email: "host@example.com", PasswordHash: "hashed"}
	require.NoError(t, db.Create(&host).Error)
	group := models.Group{Name: "Тестовая группа", Code: "PLANCODE", HostID: host.ID}
	require.NoError(t, db.Create(&group).Error)

	now := time.Now()
	slot, err := models.NewSlot(group.ID, host.ID, "Сдача практики", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	slot.IsClosed = isClosed
	require.NoError(t, db.Create(&slot).Error)
	return slot
}

func TestCloseExpiredSlots(t *testing.T) {
	db := setupTestDB(t)
	events := make(chan engine.Event, 16)
	p := NewPlanner(db, events)

	slot := createExpiredSlot(t, db, false)

	p.CloseExpiredSlots()

	var stored models.Slot
	require.NoError(t, db.First(&stored, slot.ID).Error)
	assert.True(t, stored.IsClosed, "Истёкший слот должен получить флаг закрытия")
	require.Len(t, events, 1, "По закрытому слоту должно уйти одно событие")
	ev := <-events
	assert.Equal(t, engine.EventSlotClosed, ev.Type)
	assert.Equal(t, slot.ID, ev.SlotID)

	// Повторный проход уже ничего не закрывает и не рассылает.
	p.CloseExpiredSlots()
	assert.Len(t, events, 0, "Повторный проход не должен дублировать событие")
}

func TestCloseExpiredGuardsManualClose(t *testing.T) {
	db := setupTestDB(t)
	events := make(chan engine.Event, 16)
	p := NewPlanner(db, events)

	slot := createExpiredSlot(t, db, false)

	// Ведущий успевает закрыть слот между выборкой кандидатов и записью:
	// условный UPDATE ничего не меняет, событие не уходит.
	require.NoError(t, db.Model(&models.Slot{}).Where("id = ?", slot.ID).Update("is_closed", true).Error)

	assert.False(t, p.closeExpired(slot.ID), "Закрытый вручную слот не должен закрываться повторно")
	assert.Len(t, events, 0, "По уже закрытому слоту событие не рассылается")
}
