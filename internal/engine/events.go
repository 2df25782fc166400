package engine

// Тип доменного события очереди.
type EventType string

const (
	EventEntryJoined   EventType = "entry_joined"
	EventEntryLeft     EventType = "entry_left"
	EventEntryNotified EventType = "entry_notified"
	EventEntryServed   EventType = "entry_served"
	EventSlotClosed    EventType = "slot_closed"
)

// Event описывает совершившееся изменение состояния очереди.
// Движок публикует события после фиксации транзакции, их доставкой
// занимается отдельный диспетчер.
type Event struct {
	Type      EventType
	SlotID    uint
	EntryID   uint
	VisitorID uint
	Position  int
}
