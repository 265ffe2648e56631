package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/casedesk-backend/api/middleware"
	"github.com/casedesk/casedesk-backend/internal/complaints"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

type recordingComplaintsService struct {
	lastActor complaints.Actor
	lastID    uuid.UUID
}

func (s *recordingComplaintsService) Create(ctx context.Context, actor complaints.Actor, req complaints.CreateRequest) (*models.Complaint, error) {
	s.lastActor = actor
	return &models.Complaint{ID: uuid.New(), UserID: actor.UserID, Subject: req.Subject}, nil
}

func (s *recordingComplaintsService) List(ctx context.Context, actor complaints.Actor, params pagination.Params) (*complaints.ListResult, error) {
	s.lastActor = actor
	return &complaints.ListResult{}, nil
}

func (s *recordingComplaintsService) Get(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID) (*models.Complaint, error) {
	s.lastActor = actor
	s.lastID = complaintID
	return &models.Complaint{ID: complaintID}, nil
}

func (s *recordingComplaintsService) Assign(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.AssignRequest) (*models.Complaint, error) {
	s.lastActor = actor
	s.lastID = complaintID
	return &models.Complaint{ID: complaintID}, nil
}

func (s *recordingComplaintsService) AddFollowUp(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.FollowUpRequest) (*models.Complaint, error) {
	s.lastActor = actor
	s.lastID = complaintID
	return &models.Complaint{ID: complaintID}, nil
}

func (s *recordingComplaintsService) UpdateStatus(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.UpdateStatusRequest) (*models.Complaint, error) {
	s.lastActor = actor
	s.lastID = complaintID
	return &models.Complaint{ID: complaintID}, nil
}

func authedRequest(method, target, body string, userID uuid.UUID, role string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestComplaintCreatePassesActorThrough(t *testing.T) {
	svc := &recordingComplaintsService{}
	userID := uuid.New()

	req := authedRequest(http.MethodPost, "/api/complaints", `{"subject":"Damaged box","description":"Arrived crushed"}`, userID, "customer")
	resp := httptest.NewRecorder()
	ComplaintCreate(svc, nil)(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, userID, svc.lastActor.UserID)
	assert.Equal(t, "customer", string(svc.lastActor.Role))
}

func TestComplaintCreateRejectsMissingIdentity(t *testing.T) {
	svc := &recordingComplaintsService{}

	req := httptest.NewRequest(http.MethodPost, "/api/complaints", strings.NewReader(`{"subject":"x","description":"y"}`))
	resp := httptest.NewRecorder()
	ComplaintCreate(svc, nil)(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestComplaintGetRejectsMalformedID(t *testing.T) {
	svc := &recordingComplaintsService{}

	req := authedRequest(http.MethodGet, "/api/complaints/not-a-uuid", "", uuid.New(), "customer")
	req = withURLParam(req, "complaintId", "not-a-uuid")
	resp := httptest.NewRecorder()
	ComplaintGet(svc, nil)(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestComplaintUpdateStatusParsesPathID(t *testing.T) {
	svc := &recordingComplaintsService{}
	complaintID := uuid.New()

	req := authedRequest(http.MethodPut, "/api/complaints/"+complaintID.String()+"/status", `{"status":"CLOSED"}`, uuid.New(), "staff")
	req = withURLParam(req, "complaintId", complaintID.String())
	resp := httptest.NewRecorder()
	ComplaintUpdateStatus(svc, nil)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, complaintID, svc.lastID)
}

func TestComplaintListRejectsBadPagination(t *testing.T) {
	svc := &recordingComplaintsService{}

	req := authedRequest(http.MethodGet, "/api/complaints?page=zero", "", uuid.New(), "customer")
	resp := httptest.NewRecorder()
	ComplaintList(svc, nil)(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
