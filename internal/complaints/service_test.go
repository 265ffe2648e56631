package complaints

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/outbox"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

func setupComplaintsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	complaints := `
CREATE TABLE IF NOT EXISTS complaints (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  description TEXT NOT NULL,
  product_name TEXT,
  image_url TEXT,
  status TEXT NOT NULL,
  assigned_to_name TEXT,
  assigned_to_user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	followUps := `
CREATE TABLE IF NOT EXISTS follow_ups (
  id TEXT PRIMARY KEY,
  complaint_id TEXT NOT NULL,
  reviewer_user_id TEXT,
  note TEXT NOT NULL,
  created_at DATETIME
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(complaints).Error)
	require.NoError(t, conn.Exec(followUps).Error)
	require.NoError(t, conn.Exec(outboxEvents).Error)
	return conn
}

func newComplaintsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		DB:     db.NewWithConn(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)
	return svc
}

func customerActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleCustomer}
}

func staffActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleStaff}
}

func eventTypes(t *testing.T, conn *gorm.DB) []string {
	t.Helper()
	var events []models.OutboxEvent
	require.NoError(t, conn.Order("created_at ASC, id ASC").Find(&events).Error)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, string(e.EventType))
	}
	return types
}

func TestCreate_SubjectCarriesProductName(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	actor := customerActor()

	product := "Toaster X200"
	complaint, err := svc.Create(context.Background(), actor, CreateRequest{
		Subject:     "Broken on arrival",
		Description: "The unit does not power on.",
		ProductName: &product,
	})
	require.NoError(t, err)
	assert.Equal(t, "Broken on arrival - Product: Toaster X200", complaint.Subject)
	assert.Equal(t, enums.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, actor.UserID, complaint.UserID)

	assert.Equal(t, []string{"complaint_created"}, eventTypes(t, conn))
}

func TestCreate_WithoutProductKeepsSubject(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)

	complaint, err := svc.Create(context.Background(), customerActor(), CreateRequest{
		Subject:     "Late delivery",
		Description: "Order arrived a week late.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Late delivery", complaint.Subject)
}

func TestList_CustomerSeesOnlyOwn(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	mine := customerActor()
	other := customerActor()

	_, err := svc.Create(ctx, mine, CreateRequest{Subject: "Mine", Description: "mine only"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, CreateRequest{Subject: "Theirs", Description: "not mine"})
	require.NoError(t, err)

	result, err := svc.List(ctx, mine, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result.Complaints, 1)
	assert.Equal(t, mine.UserID, result.Complaints[0].UserID)
	assert.Equal(t, int64(1), result.Pagination.Total)

	all, err := svc.List(ctx, staffActor(), pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Complaints, 2)
}

func TestGet_CustomerCannotReadOthers(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	owner := customerActor()
	complaint, err := svc.Create(ctx, owner, CreateRequest{Subject: "Private", Description: "owner only"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, customerActor(), complaint.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	got, err := svc.Get(ctx, staffActor(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, got.ID)
}

func TestAssign_MovesPendingToInProgress(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	complaint, err := svc.Create(ctx, customerActor(), CreateRequest{Subject: "Assign me", Description: "d"})
	require.NoError(t, err)

	staff := staffActor()
	assigned, err := svc.Assign(ctx, staff, complaint.ID, AssignRequest{ReviewerName: "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, enums.ComplaintStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssignedToName)
	assert.Equal(t, "Jordan", *assigned.AssignedToName)
	require.Len(t, assigned.FollowUps, 1)
	assert.Equal(t, "Complaint assigned to reviewer Jordan.", assigned.FollowUps[0].Note)

	// reassignment of an in-progress complaint keeps the status
	reassigned, err := svc.Assign(ctx, staff, complaint.ID, AssignRequest{ReviewerName: "Robin"})
	require.NoError(t, err)
	assert.Equal(t, enums.ComplaintStatusInProgress, reassigned.Status)
	assert.Equal(t, "Robin", *reassigned.AssignedToName)

	assert.Equal(t, []string{"complaint_created", "complaint_assigned", "complaint_assigned"}, eventTypes(t, conn))
}

func TestAssign_ClosedComplaintRejected(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	complaint, err := svc.Create(ctx, customerActor(), CreateRequest{Subject: "Done", Description: "d"})
	require.NoError(t, err)

	staff := staffActor()
	_, err = svc.UpdateStatus(ctx, staff, complaint.ID, UpdateStatusRequest{Status: "CLOSED"})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, staff, complaint.ID, AssignRequest{ReviewerName: "Late"})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestAddFollowUp_AppendsInOrder(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	complaint, err := svc.Create(ctx, customerActor(), CreateRequest{Subject: "Notes", Description: "d"})
	require.NoError(t, err)

	staff := staffActor()
	_, err = svc.AddFollowUp(ctx, staff, complaint.ID, FollowUpRequest{Note: "first"})
	require.NoError(t, err)
	_, err = svc.AddFollowUp(ctx, staff, complaint.ID, FollowUpRequest{Note: "second"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, staff, complaint.ID)
	require.NoError(t, err)
	require.Len(t, got.FollowUps, 2)
	assert.Equal(t, "first", got.FollowUps[0].Note)
	assert.Equal(t, "second", got.FollowUps[1].Note)
}

func TestAddFollowUp_UnknownComplaint(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)

	_, err := svc.AddFollowUp(context.Background(), staffActor(), uuid.New(), FollowUpRequest{Note: "n"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateStatus_LegalPath(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	complaint, err := svc.Create(ctx, customerActor(), CreateRequest{Subject: "Lifecycle", Description: "d"})
	require.NoError(t, err)

	staff := staffActor()
	for _, status := range []string{"IN_PROGRESS", "RESOLVED", "CLOSED"} {
		updated, err := svc.UpdateStatus(ctx, staff, complaint.ID, UpdateStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status.String())
	}

	got, err := svc.Get(ctx, staff, complaint.ID)
	require.NoError(t, err)
	require.Len(t, got.FollowUps, 3)
	assert.Equal(t, "Complaint status updated to IN_PROGRESS.", got.FollowUps[0].Note)
	assert.Equal(t, "Complaint status updated to CLOSED.", got.FollowUps[2].Note)
}

func TestUpdateStatus_IllegalJumpRejected(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)
	ctx := context.Background()

	complaint, err := svc.Create(ctx, customerActor(), CreateRequest{Subject: "Jump", Description: "d"})
	require.NoError(t, err)

	staff := staffActor()
	_, err = svc.UpdateStatus(ctx, staff, complaint.ID, UpdateStatusRequest{Status: "RESOLVED"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	// nothing was written on the rejected move
	got, err := svc.Get(ctx, staff, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ComplaintStatusPending, got.Status)
	assert.Empty(t, got.FollowUps)
	assert.Equal(t, []string{"complaint_created"}, eventTypes(t, conn))
}

func TestUpdateStatus_UnknownValueIsValidationError(t *testing.T) {
	conn := setupComplaintsTestDB(t)
	svc := newComplaintsService(t, conn)

	_, err := svc.UpdateStatus(context.Background(), staffActor(), uuid.New(), UpdateStatusRequest{Status: "pending"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
