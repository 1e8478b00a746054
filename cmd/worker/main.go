// The worker drains the notification topic and performs the actual
// mail and SMS delivery, keeping slow transports out of the API's
// request path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/pnedelko/user-service/internal/config"
	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/mail"
	"github.com/pnedelko/user-service/internal/mykafka"
	"github.com/pnedelko/user-service/internal/notify"
)

const consumerGroup = "notification-worker"

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.SMTPHost, "SMTP_HOST")

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := mykafka.NewReader(cfg.KafkaBrokers, cfg.NotificationTopic, consumerGroup)
	defer reader.Close()

	mailer := &mail.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
	sms := &mail.SMSSender{
		ProviderURL: cfg.SMSProviderURL,
		AccountID:   cfg.SMSAccountID,
		AuthToken:   cfg.SMSAuthToken,
	}

	logger.Info("worker started", "topic", cfg.NotificationTopic, "group", consumerGroup)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				break
			}
			logger.Error("read message failed", "error", err)
			continue
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg.Value, &head); err != nil {
			logger.Error("bad event payload", "error", err)
			continue
		}

		switch head.Type {
		case notify.EventResetEmail:
			var ev notify.ResetEmailEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				logger.Error("bad reset email event", "error", err)
				continue
			}
			if err := mailer.SendResetPassword(ev.Email, ev.Name, ev.ResetLink); err != nil {
				logger.Error("reset email delivery failed", "user_id", ev.UserID, "error", err)
				continue
			}
			logger.Info("reset email sent", "user_id", ev.UserID)

		case notify.EventSMS:
			var ev notify.SMSEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				logger.Error("bad sms event", "error", err)
				continue
			}
			if err := sms.Send(ctx, ev.Phone, ev.Message); err != nil {
				logger.Error("sms delivery failed", "user_id", ev.UserID, "error", err)
				continue
			}
			logger.Info("sms sent", "user_id", ev.UserID)

		default:
			logger.Warn("unknown event type", "type", head.Type)
		}
	}

	log.Println("worker stopped")
}
