package engine

import (
	"errors"
	"time"

	"ezschedule/internal/models"

	"gorm.io/gorm"
)

// entryQueue — FIFO-очередь ожидающих записей одного слота поверх
// позиционированных строк в базе. Порядок вставки и есть порядок очереди:
// позиции плотные, начинаются с 1, голова очереди всегда position = 1.
// Все методы работают внутри транзакции, открытой движком.
type entryQueue struct {
	tx     *gorm.DB
	slotID uint
}

func newEntryQueue(tx *gorm.DB, slotID uint) entryQueue {
	return entryQueue{tx: tx, slotID: slotID}
}

// contains сообщает, стоит ли участник в очереди.
func (q entryQueue) contains(visitorID uint) (bool, error) {
	var count int64
	err := q.tx.Model(&models.Entry{}).
		Where("slot_id = ? AND visitor_id = ? AND status = ?", q.slotID, visitorID, models.EntryStatusWaiting).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// enqueue добавляет участника в хвост очереди.
func (q entryQueue) enqueue(visitorID uint, tags []string) (models.Entry, error) {
	var maxPosition int
	row := q.tx.Model(&models.Entry{}).
		Where("slot_id = ? AND status = ?", q.slotID, models.EntryStatusWaiting).
		Select("COALESCE(MAX(position),0)").Row()
	if err := row.Scan(&maxPosition); err != nil {
		return models.Entry{}, err
	}

	entry := models.NewEntry(q.slotID, visitorID, tags)
	entry.Position = maxPosition + 1
	if err := q.tx.Create(&entry).Error; err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

// dequeueFront снимает голову очереди и присваивает ей статус status.
// Остальные записи сдвигаются на позицию вперёд, их взаимный порядок не меняется.
func (q entryQueue) dequeueFront(status models.EntryStatus) (models.Entry, error) {
	var head models.Entry
	err := q.tx.
		Where("slot_id = ? AND status = ?", q.slotID, models.EntryStatusWaiting).
		Order("position ASC").
		First(&head).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrQueueEmpty
	}
	if err != nil {
		return models.Entry{}, err
	}
	if err := q.removeAt(&head, status); err != nil {
		return models.Entry{}, err
	}
	return head, nil
}

// remove убирает запись участника из любого места очереди со статусом status.
func (q entryQueue) remove(visitorID uint, status models.EntryStatus) (models.Entry, error) {
	var entry models.Entry
	err := q.tx.
		Where("slot_id = ? AND visitor_id = ? AND status = ?", q.slotID, visitorID, models.EntryStatusWaiting).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrNotInQueue
	}
	if err != nil {
		return models.Entry{}, err
	}
	if err := q.removeAt(&entry, status); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

func (q entryQueue) removeAt(entry *models.Entry, status models.EntryStatus) error {
	now := time.Now()
	entry.Status = status
	entry.LeftAt = &now
	if err := q.tx.Save(entry).Error; err != nil {
		return err
	}
	// Сдвигаем позиции оставшихся за вышедшим, чтобы нумерация осталась плотной.
	return q.tx.Model(&models.Entry{}).
		Where("slot_id = ? AND status = ? AND position > ?", q.slotID, models.EntryStatusWaiting, entry.Position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

// waiting возвращает ожидающие записи в порядке очереди вместе с участниками.
func (q entryQueue) waiting() ([]models.Entry, error) {
	var entries []models.Entry
	err := q.tx.
		Preload("Visitor").
		Where("slot_id = ? AND status = ?", q.slotID, models.EntryStatusWaiting).
		Order("position ASC").
		Find(&entries).Error
	return entries, err
}
