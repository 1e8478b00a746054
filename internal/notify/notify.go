// Package notify publishes notification events to Kafka. Delivery
// itself happens in the worker binary, so a slow or failing mail
// transport never holds up an HTTP response.
package notify

import (
	"context"
	"time"

	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/mykafka"
)

const (
	EventResetEmail = "reset_password_email"
	EventSMS        = "sms"
)

type ResetEmailEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ResetLink string `json:"reset_link"`
}

type SMSEvent struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type KafkaNotifier struct {
	Producer *mykafka.Producer
	Topic    string
}

func (n *KafkaNotifier) SendResetEmail(ctx context.Context, user *models.User, link string) error {
	event := ResetEmailEvent{
		Type:      EventResetEmail,
		UserID:    user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		ResetLink: link,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return n.Producer.PublishEvent(ctx, n.Topic, event.UserID, event)
}

func (n *KafkaNotifier) SendSMS(ctx context.Context, userID, phone, message string) error {
	event := SMSEvent{
		Type:    EventSMS,
		UserID:  userID,
		Phone:   phone,
		Message: message,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return n.Producer.PublishEvent(ctx, n.Topic, userID, event)
}
