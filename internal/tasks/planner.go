package tasks

import (
	"log"
	"time"

	"ezschedule/internal/engine"
	"ezschedule/internal/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Planner выполняет фоновые задачи обслуживания слотов.
type Planner struct {
	db     *gorm.DB
	events chan<- engine.Event
}

func NewPlanner(db *gorm.DB, events chan<- engine.Event) *Planner {
	return &Planner{db: db, events: events}
}

// CloseExpiredSlots находит слоты с истёкшим окном приёма и проставляет им
// флаг закрытия. Производный статус таких слотов и так closed, флаг делает
// закрытие долговечным для выборок и рассылает событие подписчикам.
func (p *Planner) CloseExpiredSlots() {
	now := time.Now()

	var slots []models.Slot
	if err := p.db.Where("is_closed = ? AND ends_at <= ?", false, now).Find(&slots).Error; err != nil {
		log.Println("Ошибка при поиске истёкших слотов:", err)
		return
	}

	for _, slot := range slots {
		if !p.closeExpired(slot.ID) {
			continue
		}
		log.Printf("Слот %d ('%s') закрыт по истечении окна.\n", slot.ID, slot.Title)
		if p.events != nil {
			select {
			case p.events <- engine.Event{Type: engine.EventSlotClosed, SlotID: slot.ID}:
			default:
			}
		}
	}
}

// closeExpired проставляет флаг закрытия, если слот всё ещё открыт.
// Условие в UPDATE защищает от гонки с ручным закрытием ведущим между
// выборкой кандидатов и записью: повторного события о закрытии не будет.
func (p *Planner) closeExpired(slotID uint) bool {
	res := p.db.Model(&models.Slot{}).
		Where("id = ? AND is_closed = ?", slotID, false).
		Update("is_closed", true)
	if res.Error != nil {
		log.Println("Ошибка закрытия слота", slotID, ":", res.Error)
		return false
	}
	return res.RowsAffected > 0
}

// CleanOldSlots удаляет слоты, завершившиеся больше 30 дней назад,
// вместе с их записями и анкетами.
func (p *Planner) CleanOldSlots() {
	threshold := time.Now().Add(-30 * 24 * time.Hour)

	var slotIDs []uint
	if err := p.db.Model(&models.Slot{}).Where("ends_at < ?", threshold).Pluck("id", &slotIDs).Error; err != nil {
		log.Println("Ошибка при поиске устаревших слотов:", err)
		return
	}
	if len(slotIDs) == 0 {
		return
	}

	if err := p.db.Where("slot_id IN ?", slotIDs).Delete(&models.Entry{}).Error; err != nil {
		log.Println("Ошибка при удалении записей устаревших слотов:", err)
		return
	}
	if err := p.db.Where("slot_id IN ?", slotIDs).Delete(&models.ConsultForm{}).Error; err != nil {
		log.Println("Ошибка при удалении анкет устаревших слотов:", err)
		return
	}
	if err := p.db.Delete(&models.Slot{}, slotIDs).Error; err != nil {
		log.Println("Ошибка при удалении устаревших слотов:", err)
		return
	}
	log.Printf("Удалено устаревших слотов: %d.\n", len(slotIDs))
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler(p *Planner) *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Закрытие истёкших слотов каждую минуту.
	if _, err := c.AddFunc("0 * * * * *", p.CloseExpiredSlots); err != nil {
		log.Println("Ошибка запуска cron-задачи CloseExpiredSlots:", err)
	}

	// Очистка устаревших слотов каждый день в 03:00.
	if _, err := c.AddFunc("0 0 3 * * *", p.CleanOldSlots); err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldSlots:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
