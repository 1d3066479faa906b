package notificator

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rahulbansal29/Landchain/pkg/logger"
)

// EmailNotificator mails operator notifications to a fixed recipient list.
type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	Recipients   []string

	SMTPAuth smtp.Auth
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string, recipients []string) *EmailNotificator {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotificator{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
		Recipients:   recipients,
	}
}

func (e *EmailNotificator) SendNotification(message string) {
	if len(e.Recipients) == 0 {
		return
	}
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	for _, to := range e.Recipients {
		msg := fmt.Sprintf(
			"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
			e.SMTPSender,
			to,
			"Landchain notification",
			message,
		)
		if err := smtp.SendMail(addr, e.SMTPAuth, e.SMTPSender, []string{to}, []byte(msg)); err != nil {
			e.logger.Error("Failed to send email: ", err)
		}
	}
}
