package engine

import "errors"

// Ошибки операций над очередью слота. Каждая возвращается до любой записи
// в базу, частичных изменений при отказе не бывает.
var (
	ErrNotFound      = errors.New("слот или запись не найдены")
	ErrForbidden     = errors.New("операция доступна только ведущему слота")
	ErrAlreadyQueued = errors.New("пользователь уже состоит в очереди")
	ErrNotInQueue    = errors.New("активная запись в очереди не найдена")
	ErrQueueEmpty    = errors.New("очередь пуста")
	ErrSlotClosed    = errors.New("очередь слота закрыта")
	ErrAlreadyClosed = errors.New("слот уже был закрыт")
	ErrNotNotified   = errors.New("запись не была вызвана")
)
