package events

import (
	"fmt"
	"log"
	"strconv"

	"ezschedule/internal/engine"
	"ezschedule/internal/models"
	"ezschedule/internal/notify"
	"ezschedule/internal/ws"

	"gorm.io/gorm"
)

// Dispatcher разводит доменные события движка по получателям:
// подписчикам WebSocket и почтовому отправителю. Работает отдельной
// горутиной, поэтому сбои доставки не задевают сами операции.
type Dispatcher struct {
	ch     chan engine.Event
	hub    *ws.Hub
	sender notify.Sender
	db     *gorm.DB
}

func NewDispatcher(db *gorm.DB, hub *ws.Hub, sender notify.Sender) *Dispatcher {
	return &Dispatcher{
		ch:     make(chan engine.Event, 256),
		hub:    hub,
		sender: sender,
		db:     db,
	}
}

// Events возвращает канал, в который движок публикует события.
func (d *Dispatcher) Events() chan<- engine.Event {
	return d.ch
}

// Run обрабатывает события до закрытия канала.
func (d *Dispatcher) Run() {
	for ev := range d.ch {
		d.broadcast(ev)
		d.notifyMail(ev)
	}
}

func (d *Dispatcher) broadcast(ev engine.Event) {
	if d.hub == nil {
		return
	}
	msg := ws.WSMessage{
		EventType: string(ev.Type),
		SlotID:    strconv.Itoa(int(ev.SlotID)),
		Data:      map[string]interface{}{},
	}
	if ev.VisitorID != 0 {
		msg.Data["user_id"] = ev.VisitorID
	}
	if ev.Position != 0 {
		msg.Data["position"] = ev.Position
	}
	d.hub.BroadcastWSMessage(msg)
}

// notifyMail отправляет письмо участнику по событиям, которые его касаются.
// Отказ отправителя логируется и проглатывается.
func (d *Dispatcher) notifyMail(ev engine.Event) {
	if d.sender == nil || ev.VisitorID == 0 {
		return
	}

	var subject, body string
	switch ev.Type {
	case engine.EventEntryNotified:
		subject = "Ваша очередь подошла"
		body = fmt.Sprintf("Ведущий вызывает вас на консультацию (слот %d).", ev.SlotID)
	case engine.EventEntryJoined:
		subject = "Вы встали в очередь"
		body = fmt.Sprintf("Вы заняли позицию %d в очереди слота %d.", ev.Position, ev.SlotID)
	default:
		return
	}

	var visitor models.User
	if err := d.db.First(&visitor, ev.VisitorID).Error; err != nil {
		log.Println("Не удалось найти получателя уведомления:", err)
		return
	}
	if err := d.sender.Send(visitor.Email, subject, body); err != nil {
		log.Printf("Ошибка отправки уведомления для %s: %v", visitor.Email, err)
	}
}
