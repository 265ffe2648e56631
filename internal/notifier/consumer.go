package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/internal/users"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/mailer"
	"github.com/casedesk/casedesk-backend/pkg/metrics"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/outbox/idempotency"
	"github.com/casedesk/casedesk-backend/pkg/outbox/payloads"
)

// ConsumerName scopes idempotency keys for this worker.
const ConsumerName = "notifier"

const attrEventType = "event_type"

// Consumer turns published domain events into outbound emails. Each event is
// processed at most once per idempotency TTL; failures release the marker and
// nack so Pub/Sub redelivers.
type Consumer struct {
	sub         *pubsub.Subscriber
	idem        *idempotency.Manager
	mail        mailer.Mailer
	users       users.Repository
	logg        *logger.Logger
	metrics     *metrics.WorkerMetrics
	sendTimeout time.Duration
}

// ConsumerParams packages the dependencies for the notifier consumer.
type ConsumerParams struct {
	Subscriber  *pubsub.Subscriber
	Idempotency *idempotency.Manager
	Mailer      mailer.Mailer
	Users       users.Repository
	Logger      *logger.Logger
	Metrics     *metrics.WorkerMetrics
	SendTimeout time.Duration
}

// NewConsumer wires the notifier worker.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Idempotency == nil {
		return nil, errors.New("idempotency manager required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer required")
	}
	if params.Users == nil {
		return nil, errors.New("users repository required")
	}
	sendTimeout := params.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Consumer{
		sub:         params.Subscriber,
		idem:        params.Idempotency,
		mail:        params.Mailer,
		users:       params.Users,
		logg:        params.Logger,
		metrics:     params.Metrics,
		sendTimeout: sendTimeout,
	}, nil
}

// Run blocks receiving messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.sub == nil {
		return errors.New("subscriber required")
	}
	return c.sub.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
		start := time.Now()
		retry := c.process(msgCtx, msg.Attributes[attrEventType], msg.Data)
		c.metrics.ObserveDuration(ConsumerName, time.Since(start))
		if retry {
			c.metrics.IncFailure(ConsumerName)
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// process handles one event. It returns true when the message should be
// redelivered; malformed or unknown events are dropped.
func (c *Consumer) process(ctx context.Context, eventTypeAttr string, data []byte) (retry bool) {
	eventType, err := enums.ParseOutboxEventType(strings.TrimSpace(eventTypeAttr))
	if err != nil {
		c.warn(ctx, "skipping unknown event type", map[string]any{"event_type": eventTypeAttr})
		return false
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.warn(ctx, "dropping undecodable event payload", map[string]any{"event_type": eventTypeAttr})
		return false
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.warn(ctx, "dropping event with invalid id", map[string]any{"event_type": eventTypeAttr})
		return false
	}

	processed, err := c.idem.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
	if err != nil {
		c.error(ctx, err, "idempotency check failed", eventID)
		return true
	}
	if processed {
		return false
	}

	msg, err := c.buildEmail(ctx, eventType, envelope.Data)
	if err != nil {
		if errors.Is(err, errNoRecipient) {
			// Recipient is gone (deleted account); nothing to send.
			return false
		}
		c.error(ctx, err, "building notification email", eventID)
		_ = c.idem.Delete(ctx, ConsumerName, eventID)
		return true
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()
	if err := c.mail.Send(sendCtx, *msg); err != nil {
		c.error(ctx, err, "sending notification email", eventID)
		_ = c.idem.Delete(ctx, ConsumerName, eventID)
		return true
	}

	c.metrics.IncSuccess(ConsumerName)
	if c.logg != nil {
		fields := map[string]any{"event_id": eventID.String(), "event_type": string(eventType)}
		c.logg.Info(c.logg.WithFields(ctx, fields), "notification email sent")
	}
	return false
}

var errNoRecipient = errors.New("no recipient for event")

func (c *Consumer) buildEmail(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) (*mailer.Message, error) {
	var to string
	var tmplData templateData

	switch eventType {
	case enums.EventUserRegistered, enums.EventUserEmailVerified, enums.EventUserVerificationResent,
		enums.EventUserPasswordResetRequested, enums.EventUserPasswordResetCompleted,
		enums.EventUserProfileUpdated, enums.EventUserDeleted:
		var payload payloads.UserEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.Email == "" {
			return nil, errNoRecipient
		}
		to = payload.Email
		tmplData = templateData{
			Username: payload.Username,
			Code:     payload.VerificationCode,
			OTP:      payload.OTP,
		}

	case enums.EventComplaintCreated, enums.EventComplaintAssigned,
		enums.EventComplaintFollowUpAdded, enums.EventComplaintStatusUpdated:
		var payload payloads.ComplaintEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		user, err := c.users.FindByID(ctx, payload.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errNoRecipient
			}
			return nil, err
		}
		to = user.Email
		tmplData = templateData{
			Username:     user.Username,
			Subject:      payload.Subject,
			Status:       payload.Status,
			ReviewerName: payload.ReviewerName,
			Note:         payload.Note,
		}

	default:
		return nil, errNoRecipient
	}

	rendered, err := render(eventType, tmplData)
	if err != nil {
		return nil, err
	}
	return &mailer.Message{
		To:       to,
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
	}, nil
}

func (c *Consumer) warn(ctx context.Context, msg string, fields map[string]any) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithFields(ctx, fields), msg)
}

func (c *Consumer) error(ctx context.Context, err error, msg string, eventID uuid.UUID) {
	if c.logg == nil {
		return
	}
	fields := map[string]any{"event_id": eventID.String()}
	c.logg.Error(c.logg.WithFields(ctx, fields), msg, err)
}
