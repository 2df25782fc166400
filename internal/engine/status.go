package engine

import (
	"time"

	"ezschedule/internal/models"
)

// Производный статус слота. Не хранится в базе, вычисляется заново
// при каждой операции: время идёт независимо от сохранённых полей.
type Status string

const (
	StatusInactive Status = "inactive" // Окно приёма ещё не началось
	StatusActive   Status = "active"   // Окно открыто, очередь работает
	StatusClosed   Status = "closed"   // Закрыт ведущим или окно истекло
)

// ResolveStatus вычисляет статус слота на момент now.
func ResolveStatus(slot models.Slot, now time.Time) Status {
	if slot.IsClosed || !now.Before(slot.EndsAt) {
		return StatusClosed
	}
	if now.Before(slot.StartsAt) {
		return StatusInactive
	}
	return StatusActive
}
