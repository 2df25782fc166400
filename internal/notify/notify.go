package notify

import (
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
)

// Sender отправляет участнику уведомление о смене состояния очереди.
// Доставка best-effort: отказ отправителя логируется и не влияет на
// вызвавшую его операцию.
type Sender interface {
	Send(to, subject, body string) error
}

// LogSender пишет уведомления в лог. Используется, когда SMTP не настроен.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	log.Printf("Уведомление для %s: %s — %s", to, subject, body)
	return nil
}

// SMTPSender отправляет уведомления почтой через обычный SMTP.
type SMTPSender struct {
	Addr string // host:port сервера
	From string
	Auth smtp.Auth
}

func (s SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	return smtp.SendMail(s.Addr, s.Auth, s.From, []string{to}, []byte(msg))
}

// FromEnv выбирает отправителя по окружению: при заданном SMTP_ADDR —
// почта, иначе лог.
func FromEnv() Sender {
	addr := os.Getenv("SMTP_ADDR")
	if addr == "" {
		return LogSender{}
	}
	from := os.Getenv("SMTP_FROM")
	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	return SMTPSender{Addr: addr, From: from, Auth: auth}
}
