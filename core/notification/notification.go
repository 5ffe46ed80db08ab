// Package notification is the per-user message log with read/unread state.
package notification

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/hatag-tech/elearning/core"
)

var ErrNotFound = errors.New("notification not found")

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeDanger  Type = "danger"
	TypePrimary Type = "primary"
)

type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      Type                   `json:"type"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type (
	// RecipientResolver looks up the mailbox of a user, false when it has none.
	RecipientResolver func(userID string) (mail.Address, bool)

	Option func(svc *Service)

	// Service is the notification sink. Notifications are kept most-recent-first.
	Service struct {
		repo     core.Collection[Notification]
		logger   core.Logger
		mailSvc  core.EmailService
		resolver RecipientResolver
		conf     *core.Config
	}
)

// WithMailer mirrors every new notification to the recipient's mailbox.
func WithMailer(conf *core.Config, mailSvc core.EmailService, resolver RecipientResolver) Option {
	return func(svc *Service) {
		svc.conf = conf
		svc.mailSvc = mailSvc
		svc.resolver = resolver
	}
}

func NewService(repo core.Collection[Notification], logger core.Logger, opts ...Option) *Service {
	svc := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Add prepends a new unread notification for userID. An empty type defaults to info.
func (svc *Service) Add(userID, title, message string, typ Type, data map[string]interface{}) Notification {
	if typ == "" {
		typ = TypeInfo
	}
	notif := Notification{
		ID:        core.NewID("notif-"),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Data:      data,
		CreatedAt: core.Now(),
	}
	svc.repo.Prepend(notif)
	svc.mail(notif)
	return notif
}

func (svc *Service) mail(notif Notification) {
	if svc.mailSvc == nil || svc.resolver == nil {
		return
	}
	to, ok := svc.resolver(notif.UserID)
	if !ok {
		svc.logger.Debug(fmt.Sprintf("notification.mail: no mailbox for %q", notif.UserID))
		return
	}
	msg := core.NewTemplatedMessage(svc.conf, to, notif.Title, "notification", notif)
	msg.Categories = []string{"notification", string(notif.Type)}
	msg.Args = map[string]string{"notification_id": notif.ID, "user_id": notif.UserID}
	svc.mailSvc.SendMessages(msg)
}

func (svc *Service) MarkAsRead(id string) error {
	n := svc.repo.Update(
		func(notif Notification) bool { return notif.ID == id },
		func(notif *Notification) { notif.Read = true },
	)
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead marks every notification of userID as read and returns how many changed.
func (svc *Service) MarkAllAsRead(userID string) int {
	return svc.repo.Update(
		func(notif Notification) bool { return notif.UserID == userID && !notif.Read },
		func(notif *Notification) { notif.Read = true },
	)
}

// Clear hard-deletes every notification of userID.
func (svc *Service) Clear(userID string) int {
	return svc.repo.Delete(func(notif Notification) bool { return notif.UserID == userID })
}

func (svc *Service) ForUser(userID string) []Notification {
	return svc.repo.Filter(func(notif Notification) bool { return notif.UserID == userID })
}

func (svc *Service) UnreadCount(userID string) int {
	return svc.repo.Count(func(notif Notification) bool { return notif.UserID == userID && !notif.Read })
}
