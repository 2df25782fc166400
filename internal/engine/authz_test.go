package engine

import (
	"testing"
	"time"

	"ezschedule/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	slot := models.Slot{HostID: 7}

	// Вступление и выход доступны любому авторизованному пользователю.
	assert.NoError(t, authorize(OpJoin, slot, 1))
	assert.NoError(t, authorize(OpLeave, slot, 1))
	assert.NoError(t, authorize(OpJoin, slot, 7))

	// Двигать, закрывать и отмечать обслуживание может только ведущий.
	assert.ErrorIs(t, authorize(OpAdvance, slot, 1), ErrForbidden)
	assert.ErrorIs(t, authorize(OpClose, slot, 1), ErrForbidden)
	assert.ErrorIs(t, authorize(OpServe, slot, 1), ErrForbidden)
	assert.NoError(t, authorize(OpAdvance, slot, 7))
	assert.NoError(t, authorize(OpClose, slot, 7))
	assert.NoError(t, authorize(OpServe, slot, 7))
}

func TestNewSlotValidation(t *testing.T) {
	start := time.Now()
	_, err := models.NewSlot(1, 7, "Консультация", start, start)
	assert.ErrorIs(t, err, models.ErrInvalidWindow, "Слот с пустым окном должен отклоняться")

	_, err = models.NewSlot(1, 7, "Консультация", start.Add(time.Hour), start)
	assert.ErrorIs(t, err, models.ErrInvalidWindow, "Слот с перевёрнутым окном должен отклоняться")

	slot, err := models.NewSlot(1, 7, "Консультация", start, start.Add(time.Hour))
	assert.NoError(t, err)
	assert.False(t, slot.IsClosed, "Новый слот должен создаваться открытым")
}
