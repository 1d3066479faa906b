package notificator

import (
	"runtime/debug"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

// Notificator fans operator notifications out to the configured channels.
// Delivery is best effort; a failing or panicking channel never reaches
// the caller.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) Notify(event *models.Event) {
	message := event.String()
	if n.TelegramNotificator != nil {
		n.dispatch("telegramNotification", n.TelegramNotificator.SendNotification, message)
	}
	if n.EmailNotificator != nil {
		n.dispatch("emailNotification", n.EmailNotificator.SendNotification, message)
	}
}

// dispatch delivers on its own goroutine so a slow or hung channel never
// blocks the operation that raised the event.
func (n *Notificator) dispatch(context string, send func(string), message string) {
	go n.safeCall(func() { send(message) }, context)
}
