package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"taskcompass/internal/model"
)

// Directory resolves recipient uids to accounts; the user service satisfies it.
type Directory interface {
	Lookup(uid string) (*model.UserAccount, bool)
}

// EmailChannel delivers notifications over SMTP.
type EmailChannel struct {
	dialer    *gomail.Dialer
	from      string
	directory Directory
}

func NewEmailChannel(host string, port int, user, password, from string, dir Directory) *EmailChannel {
	return &EmailChannel{
		dialer:    gomail.NewDialer(host, port, user, password),
		from:      from,
		directory: dir,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(n model.Notification) error {
	account, ok := c.directory.Lookup(n.Recipient)
	if !ok || account.Email == "" {
		// Recipient is unreachable by mail; nothing to deliver.
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", account.Email)
	m.SetHeader("Subject", "Task Compass: "+n.Title)
	m.SetHeader("X-Task-Tag", n.Tag())
	m.SetBody("text/html", fmt.Sprintf("<h3>%s</h3><p>%s</p>", n.Title, n.Body))

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}
