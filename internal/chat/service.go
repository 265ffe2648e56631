package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/logger"
)

// SendRequest carries a new direct message. At least one of Message and
// AttachmentURL must be set.
type SendRequest struct {
	ReceiverID    uuid.UUID `json:"receiverId" validate:"required"`
	Message       *string   `json:"message,omitempty"`
	AttachmentURL *string   `json:"attachmentUrl,omitempty" validate:"omitempty,url"`
}

// ConversationSummary is one row in a user's conversation list: the partner
// plus the most recent message exchanged with them.
type ConversationSummary struct {
	PartnerID   uuid.UUID          `json:"partnerId"`
	LastMessage models.ChatMessage `json:"lastMessage"`
}

// Service defines the polling chat operations.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, req SendRequest) (*models.ChatMessage, error)
	GetConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]models.ChatMessage, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
}

// ServiceParams packages the dependencies for the chat service.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// NewService wires chat dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) Send(ctx context.Context, senderID uuid.UUID, req SendRequest) (*models.ChatMessage, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if req.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id required")
	}
	if req.ReceiverID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}

	var message *string
	if req.Message != nil {
		trimmed := strings.TrimSpace(*req.Message)
		if trimmed != "" {
			message = &trimmed
		}
	}
	if message == nil && req.AttachmentURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message or attachment required")
	}

	row := &models.ChatMessage{
		SenderID:      senderID,
		ReceiverID:    req.ReceiverID,
		Message:       message,
		AttachmentURL: req.AttachmentURL,
	}
	if err := NewRepository(s.db.DB()).Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store message")
	}
	return row, nil
}

func (s *service) GetConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]models.ChatMessage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id required")
	}
	messages, err := NewRepository(s.db.DB()).Conversation(ctx, userID, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversation")
	}
	return messages, nil
}

func (s *service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	messages, err := NewRepository(s.db.DB()).MessagesInvolving(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversations")
	}

	// Messages arrive newest first, so the first row seen per partner is that
	// conversation's latest message.
	seen := make(map[uuid.UUID]struct{})
	summaries := make([]ConversationSummary, 0)
	for _, msg := range messages {
		partner := msg.SenderID
		if partner == userID {
			partner = msg.ReceiverID
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		summaries = append(summaries, ConversationSummary{
			PartnerID:   partner,
			LastMessage: msg,
		})
	}
	return summaries, nil
}
