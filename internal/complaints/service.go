package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/outbox/payloads"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

// CreateRequest carries a new complaint submission.
type CreateRequest struct {
	Subject     string  `json:"subject" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required,min=3"`
	ProductName *string `json:"productName,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// AssignRequest names the reviewer taking over a complaint.
type AssignRequest struct {
	ReviewerName   string     `json:"reviewerName" validate:"required,min=2,max=100"`
	ReviewerUserID *uuid.UUID `json:"reviewerUserId,omitempty"`
}

// FollowUpRequest appends a reviewer note.
type FollowUpRequest struct {
	Note string `json:"note" validate:"required,min=1"`
}

// UpdateStatusRequest moves a complaint through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Actor identifies the authenticated caller for access checks and event
// attribution.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) isReviewer() bool {
	return a.Role == enums.RoleStaff || a.Role == enums.RoleAdmin
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.UserID, Role: string(a.Role)}
}

// ListResult wraps a complaint page and its pagination metadata.
type ListResult struct {
	Complaints []models.Complaint `json:"complaints"`
	Pagination pagination.Meta    `json:"pagination"`
}

// Service defines the complaint lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*models.Complaint, error)
	List(ctx context.Context, actor Actor, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, actor Actor, complaintID uuid.UUID) (*models.Complaint, error)
	Assign(ctx context.Context, actor Actor, complaintID uuid.UUID, req AssignRequest) (*models.Complaint, error)
	AddFollowUp(ctx context.Context, actor Actor, complaintID uuid.UUID, req FollowUpRequest) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, actor Actor, complaintID uuid.UUID, req UpdateStatusRequest) (*models.Complaint, error)
}

// ServiceParams packages the dependencies for the complaints service.
type ServiceParams struct {
	DB     *db.Client
	Outbox *outbox.Service
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewService wires complaint dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &service{db: params.DB, outbox: params.Outbox, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*models.Complaint, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	subject := strings.TrimSpace(req.Subject)
	// The product name is folded into the subject so downstream views and
	// notifications carry it without a join.
	if req.ProductName != nil && strings.TrimSpace(*req.ProductName) != "" {
		subject = fmt.Sprintf("%s - Product: %s", subject, strings.TrimSpace(*req.ProductName))
	}

	complaint := &models.Complaint{
		UserID:      actor.UserID,
		Subject:     subject,
		Description: strings.TrimSpace(req.Description),
		ProductName: req.ProductName,
		ImageURL:    req.ImageURL,
		Status:      enums.ComplaintStatusPending,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintCreated,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   complaint.ID,
			Actor:         actor.ref(),
			Data: payloads.ComplaintEvent{
				ComplaintID: complaint.ID,
				UserID:      complaint.UserID,
				Subject:     complaint.Subject,
				Status:      complaint.Status.String(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params) (*ListResult, error) {
	norm := pagination.Normalize(params)
	repo := NewRepository(s.db.DB())

	// Customers only ever see their own complaints.
	var filter *uuid.UUID
	if !actor.isReviewer() {
		id := actor.UserID
		filter = &id
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count complaints")
	}

	rows, err := repo.List(ctx, filter, norm.Offset(), norm.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}

	return &ListResult{
		Complaints: rows,
		Pagination: pagination.NewMeta(norm, total),
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, complaintID uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.find(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !actor.isReviewer() && complaint.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "complaint belongs to another user")
	}
	return complaint, nil
}

func (s *service) Assign(ctx context.Context, actor Actor, complaintID uuid.UUID, req AssignRequest) (*models.Complaint, error) {
	complaint, err := s.find(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	// Assignment pulls a pending complaint into progress; reassignment of an
	// in-progress complaint is allowed without a status move.
	switch complaint.Status {
	case enums.ComplaintStatusPending:
		complaint.Status = enums.ComplaintStatusInProgress
	case enums.ComplaintStatusInProgress:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot assign complaint in status %s", complaint.Status)).
			WithDetails(map[string]any{"status": complaint.Status.String()})
	}

	reviewerName := strings.TrimSpace(req.ReviewerName)
	complaint.AssignedToName = &reviewerName
	complaint.AssignedToUserID = req.ReviewerUserID

	note := fmt.Sprintf("Complaint assigned to reviewer %s.", reviewerName)
	followUp := &models.FollowUp{
		ComplaintID:    complaint.ID,
		ReviewerUserID: req.ReviewerUserID,
		Note:           note,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.Save(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign complaint")
		}
		if err := repo.AppendFollowUp(ctx, followUp); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append assignment note")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintAssigned,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   complaint.ID,
			Actor:         actor.ref(),
			Data: payloads.ComplaintEvent{
				ComplaintID:  complaint.ID,
				UserID:       complaint.UserID,
				Subject:      complaint.Subject,
				Status:       complaint.Status.String(),
				ReviewerName: reviewerName,
				Note:         note,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	complaint.FollowUps = append(complaint.FollowUps, *followUp)
	return complaint, nil
}

func (s *service) AddFollowUp(ctx context.Context, actor Actor, complaintID uuid.UUID, req FollowUpRequest) (*models.Complaint, error) {
	complaint, err := s.find(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	reviewerID := actor.UserID
	followUp := &models.FollowUp{
		ComplaintID:    complaint.ID,
		ReviewerUserID: &reviewerID,
		Note:           strings.TrimSpace(req.Note),
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).AppendFollowUp(ctx, followUp); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append follow-up")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintFollowUpAdded,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   complaint.ID,
			Actor:         actor.ref(),
			Data: payloads.ComplaintEvent{
				ComplaintID:  complaint.ID,
				UserID:       complaint.UserID,
				Subject:      complaint.Subject,
				Status:       complaint.Status.String(),
				ReviewerName: derefOrEmpty(complaint.AssignedToName),
				Note:         followUp.Note,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	complaint.FollowUps = append(complaint.FollowUps, *followUp)
	return complaint, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, complaintID uuid.UUID, req UpdateStatusRequest) (*models.Complaint, error) {
	next, err := enums.ParseComplaintStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	complaint, err := s.find(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !complaint.Status.CanTransition(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move complaint from %s to %s", complaint.Status, next)).
			WithDetails(map[string]any{
				"from": complaint.Status.String(),
				"to":   next.String(),
			})
	}

	complaint.Status = next
	reviewerID := actor.UserID
	note := fmt.Sprintf("Complaint status updated to %s.", next)
	followUp := &models.FollowUp{
		ComplaintID:    complaint.ID,
		ReviewerUserID: &reviewerID,
		Note:           note,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.Save(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update complaint status")
		}
		if err := repo.AppendFollowUp(ctx, followUp); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status note")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventComplaintStatusUpdated,
			AggregateType: enums.AggregateComplaint,
			AggregateID:   complaint.ID,
			Actor:         actor.ref(),
			Data: payloads.ComplaintEvent{
				ComplaintID:  complaint.ID,
				UserID:       complaint.UserID,
				Subject:      complaint.Subject,
				Status:       complaint.Status.String(),
				ReviewerName: derefOrEmpty(complaint.AssignedToName),
				Note:         note,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	complaint.FollowUps = append(complaint.FollowUps, *followUp)
	return complaint, nil
}

func (s *service) find(ctx context.Context, complaintID uuid.UUID) (*models.Complaint, error) {
	if complaintID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "complaint id required")
	}
	complaint, err := NewRepository(s.db.DB()).FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find complaint")
	}
	return complaint, nil
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
