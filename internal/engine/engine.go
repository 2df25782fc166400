package engine

import (
	"errors"
	"log"
	"time"

	"ezschedule/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine выполняет операции над очередью слота: вступление, выход,
// вызов следующего, закрытие. Каждая операция — одна транзакция с
// блокировкой строки слота (SELECT ... FOR UPDATE), поэтому изменения
// одной очереди сериализуются, а разные слоты обрабатываются параллельно.
type Engine struct {
	db     *gorm.DB
	events chan<- Event
}

// New создаёт движок поверх переданного хэндла базы.
// events может быть nil, тогда события не публикуются.
func New(db *gorm.DB, events chan<- Event) *Engine {
	return &Engine{db: db, events: events}
}

// lockSlot загружает слот под блокировкой строки.
func lockSlot(tx *gorm.DB, slotID uint) (models.Slot, error) {
	var slot models.Slot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Slot{}, ErrNotFound
	}
	return slot, err
}

// Join ставит участника в хвост очереди слота.
func (e *Engine) Join(slotID, callerID uint, tags []string) (models.Entry, error) {
	var entry models.Entry
	err := e.db.Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, slotID)
		if err != nil {
			return err
		}
		if err := authorize(OpJoin, slot, callerID); err != nil {
			return err
		}
		// Вступать нельзя только в закрытый слот, до открытия окна — можно.
		if ResolveStatus(slot, time.Now()) == StatusClosed {
			return ErrSlotClosed
		}

		q := newEntryQueue(tx, slot.ID)
		queued, err := q.contains(callerID)
		if err != nil {
			return err
		}
		if queued {
			return ErrAlreadyQueued
		}

		entry, err = q.enqueue(callerID, tags)
		return err
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.emit(Event{Type: EventEntryJoined, SlotID: slotID, EntryID: entry.ID, VisitorID: callerID, Position: entry.Position})
	return entry, nil
}

// Leave убирает собственную запись участника из очереди со статусом missed.
// Разрешён при любом статусе слота: выйти из очереди можно всегда.
func (e *Engine) Leave(slotID, callerID uint) (models.Entry, error) {
	var entry models.Entry
	err := e.db.Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, slotID)
		if err != nil {
			return err
		}
		if err := authorize(OpLeave, slot, callerID); err != nil {
			return err
		}

		entry, err = newEntryQueue(tx, slot.ID).remove(callerID, models.EntryStatusMissed)
		return err
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.emit(Event{Type: EventEntryLeft, SlotID: slotID, EntryID: entry.ID, VisitorID: callerID, Position: entry.Position})
	return entry, nil
}

// Advance вызывает голову очереди: запись получает статус notified и
// снимается с очереди, порядок остальных не меняется. Только для ведущего.
func (e *Engine) Advance(slotID, callerID uint) (models.Entry, error) {
	var head models.Entry
	err := e.db.Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, slotID)
		if err != nil {
			return err
		}
		if err := authorize(OpAdvance, slot, callerID); err != nil {
			return err
		}
		if ResolveStatus(slot, time.Now()) == StatusClosed {
			return ErrSlotClosed
		}

		head, err = newEntryQueue(tx, slot.ID).dequeueFront(models.EntryStatusNotified)
		return err
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.emit(Event{Type: EventEntryNotified, SlotID: slotID, EntryID: head.ID, VisitorID: head.VisitorID, Position: head.Position})
	return head, nil
}

// Close закрывает очередь слота. Повторное закрытие — ошибка, а не
// тихий no-op: вызывающий должен отличать "я закрыл" от "уже закрыто".
func (e *Engine) Close(slotID, callerID uint) error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, slotID)
		if err != nil {
			return err
		}
		if err := authorize(OpClose, slot, callerID); err != nil {
			return err
		}
		if slot.IsClosed {
			return ErrAlreadyClosed
		}

		slot.IsClosed = true
		return tx.Save(&slot).Error
	})
	if err != nil {
		return err
	}

	e.emit(Event{Type: EventSlotClosed, SlotID: slotID})
	return nil
}

// MarkServed помечает ранее вызванную запись как обслуженную.
func (e *Engine) MarkServed(slotID, entryID, callerID uint) (models.Entry, error) {
	var entry models.Entry
	err := e.db.Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, slotID)
		if err != nil {
			return err
		}
		if err := authorize(OpServe, slot, callerID); err != nil {
			return err
		}

		err = tx.Where("slot_id = ?", slot.ID).First(&entry, entryID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if entry.Status != models.EntryStatusNotified {
			return ErrNotNotified
		}

		entry.Status = models.EntryStatusServed
		return tx.Save(&entry).Error
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.emit(Event{Type: EventEntryServed, SlotID: slotID, EntryID: entry.ID, VisitorID: entry.VisitorID})
	return entry, nil
}

// SlotState возвращает слот, его производный статус и очередь ожидающих.
func (e *Engine) SlotState(slotID uint) (models.Slot, Status, []models.Entry, error) {
	var slot models.Slot
	err := e.db.First(&slot, slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Slot{}, "", nil, ErrNotFound
	}
	if err != nil {
		return models.Slot{}, "", nil, err
	}

	entries, err := newEntryQueue(e.db, slot.ID).waiting()
	if err != nil {
		return models.Slot{}, "", nil, err
	}

	return slot, ResolveStatus(slot, time.Now()), entries, nil
}

// emit публикует событие не блокируя операцию: доставка уведомлений
// не должна задерживать или откатывать уже зафиксированное изменение.
func (e *Engine) emit(ev Event) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- ev:
	default:
		log.Printf("Канал событий переполнен, событие %s по слоту %d пропущено", ev.Type, ev.SlotID)
	}
}
