package engine

import "ezschedule/internal/models"

// Операции движка очереди.
type Operation string

const (
	OpJoin    Operation = "join"
	OpLeave   Operation = "leave"
	OpAdvance Operation = "advance"
	OpClose   Operation = "close"
	OpServe   Operation = "serve"
)

// authorize проверяет права вызывающего до каких-либо изменений.
// Вступление и выход доступны любому авторизованному пользователю
// (и только над собственной записью), двигать и закрывать очередь
// может только ведущий слота.
func authorize(op Operation, slot models.Slot, callerID uint) error {
	switch op {
	case OpAdvance, OpClose, OpServe:
		if slot.HostID != callerID {
			return ErrForbidden
		}
	}
	return nil
}
