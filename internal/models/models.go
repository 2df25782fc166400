package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

type Group struct {
	gorm.Model
	Name    string `gorm:"not null"`             // Название группы
	Code    string `gorm:"uniqueIndex;not null"` // Код для присоединения к группе
	HostID  uint   `gorm:"index;not null"`       // Владелец группы
	Host    User   `gorm:"foreignKey:HostID"`
	Members []User `gorm:"many2many:group_members"` // Участники группы
}

// Статус записи в очереди слота.
type EntryStatus string

const (
	EntryStatusWaiting  EntryStatus = "waiting"  // Ожидает вызова
	EntryStatusNotified EntryStatus = "notified" // Вызван ведущим
	EntryStatusServed   EntryStatus = "served"   // Консультация проведена
	EntryStatusMissed   EntryStatus = "missed"   // Вышел из очереди сам
)

type Slot struct {
	gorm.Model
	GroupID  uint      `gorm:"index;not null"` // Группа, к которой относится слот
	HostID   uint      `gorm:"index;not null"` // Ведущий слота, только он двигает очередь
	Host     User      `gorm:"foreignKey:HostID"`
	Title    string    `gorm:"not null"`       // Название консультации
	StartsAt time.Time `gorm:"index;not null"` // Начало окна приёма
	EndsAt   time.Time `gorm:"not null"`       // Окончание окна приёма
	IsClosed bool      `gorm:"default:false"`  // Флаг ручного закрытия очереди
}

type Entry struct {
	gorm.Model
	SlotID    uint        `gorm:"index;not null"`
	VisitorID uint        `gorm:"index;not null"` // Участник очереди
	Visitor   User        `gorm:"foreignKey:VisitorID"`
	Status    EntryStatus `gorm:"type:varchar(16);index;not null;default:'waiting'"`
	Position  int         `gorm:"index"` // Текущая позиция среди ожидающих, с 1
	Tags      string      // Список тегов через запятую, например "лаба4,повторно"
	LeftAt    *time.Time  // Время выхода из очереди (nil — участник ещё в ней)
}

type ConsultForm struct {
	gorm.Model
	SlotID  uint   `gorm:"index;not null"`
	UserID  uint   `gorm:"index;not null"`
	User    User   `gorm:"foreignKey:UserID"`
	Topic   string `gorm:"not null"` // Тема консультации
	Details string // Дополнительные детали от участника
}

var ErrInvalidWindow = errors.New("начало слота должно быть раньше окончания")

// NewSlot собирает слот с проверкой временного окна.
// Некорректные данные отбрасываются здесь, а не при сохранении.
func NewSlot(groupID, hostID uint, title string, startsAt, endsAt time.Time) (Slot, error) {
	if !startsAt.Before(endsAt) {
		return Slot{}, ErrInvalidWindow
	}
	return Slot{
		GroupID:  groupID,
		HostID:   hostID,
		Title:    title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		IsClosed: false,
	}, nil
}

// NewEntry собирает запись очереди в статусе ожидания.
func NewEntry(slotID, visitorID uint, tags []string) Entry {
	return Entry{
		SlotID:    slotID,
		VisitorID: visitorID,
		Status:    EntryStatusWaiting,
		Tags:      strings.Join(tags, ","),
	}
}

// TagList возвращает теги записи списком.
func (e Entry) TagList() []string {
	if e.Tags == "" {
		return nil
	}
	return strings.Split(e.Tags, ",")
}
