package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/internal/chat"
	"github.com/casedesk/casedesk-backend/internal/complaints"
	"github.com/casedesk/casedesk-backend/internal/identity"
	"github.com/casedesk/casedesk-backend/internal/inventory"
	"github.com/casedesk/casedesk-backend/internal/orders"
	"github.com/casedesk/casedesk-backend/internal/users"
	pkgAuth "github.com/casedesk/casedesk-backend/pkg/auth"
	"github.com/casedesk/casedesk-backend/pkg/config"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubIdentityService struct{}

func (stubIdentityService) Register(ctx context.Context, req identity.RegisterRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), Username: req.Username, Email: req.Email, Role: enums.RoleCustomer}, nil
}

func (stubIdentityService) Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResult, error) {
	return &identity.LoginResult{Token: "token", User: &models.User{ID: uuid.New(), Email: req.Email}}, nil
}

func (stubIdentityService) ForgotPassword(ctx context.Context, req identity.ForgotPasswordRequest) error {
	return nil
}

func (stubIdentityService) ResetPassword(ctx context.Context, req identity.ResetPasswordRequest) error {
	return nil
}

func (stubIdentityService) VerifyEmail(ctx context.Context, req identity.VerifyEmailRequest) error {
	return nil
}

func (stubIdentityService) ResendVerification(ctx context.Context, req identity.ResendVerificationRequest) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) List(ctx context.Context, params pagination.Params) (*users.ListResult, error) {
	return &users.ListResult{}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, req users.UpdateProfileRequest) (*users.View, error) {
	return &users.View{ID: userID}, nil
}

func (stubUsersService) Delete(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubComplaintsService struct{}

func (stubComplaintsService) Create(ctx context.Context, actor complaints.Actor, req complaints.CreateRequest) (*models.Complaint, error) {
	return &models.Complaint{ID: uuid.New(), Subject: req.Subject}, nil
}

func (stubComplaintsService) List(ctx context.Context, actor complaints.Actor, params pagination.Params) (*complaints.ListResult, error) {
	return &complaints.ListResult{}, nil
}

func (stubComplaintsService) Get(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID) (*models.Complaint, error) {
	return &models.Complaint{ID: complaintID}, nil
}

func (stubComplaintsService) Assign(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.AssignRequest) (*models.Complaint, error) {
	return &models.Complaint{ID: complaintID}, nil
}

func (stubComplaintsService) AddFollowUp(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.FollowUpRequest) (*models.Complaint, error) {
	return &models.Complaint{ID: complaintID}, nil
}

func (stubComplaintsService) UpdateStatus(ctx context.Context, actor complaints.Actor, complaintID uuid.UUID, req complaints.UpdateStatusRequest) (*models.Complaint, error) {
	return &models.Complaint{ID: complaintID}, nil
}

type stubChatService struct{}

func (stubChatService) Send(ctx context.Context, senderID uuid.UUID, req chat.SendRequest) (*models.ChatMessage, error) {
	return &models.ChatMessage{ID: uuid.New(), SenderID: senderID, ReceiverID: req.ReceiverID}, nil
}

func (stubChatService) GetConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]models.ChatMessage, error) {
	return []models.ChatMessage{}, nil
}

func (stubChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]chat.ConversationSummary, error) {
	return []chat.ConversationSummary{}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) CreateWarehouse(ctx context.Context, req inventory.CreateSiteRequest) (*models.Warehouse, error) {
	return &models.Warehouse{ID: uuid.New(), Name: req.Name}, nil
}

func (stubInventoryService) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return []models.Warehouse{}, nil
}

func (stubInventoryService) UpdateWarehouse(ctx context.Context, id uuid.UUID, req inventory.UpdateSiteRequest) (*models.Warehouse, error) {
	return &models.Warehouse{ID: id}, nil
}

func (stubInventoryService) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubInventoryService) CreateStore(ctx context.Context, req inventory.CreateSiteRequest) (*models.StoreLocation, error) {
	return &models.StoreLocation{ID: uuid.New(), Name: req.Name}, nil
}

func (stubInventoryService) ListStores(ctx context.Context) ([]models.StoreLocation, error) {
	return []models.StoreLocation{}, nil
}

func (stubInventoryService) UpdateStore(ctx context.Context, id uuid.UUID, req inventory.UpdateSiteRequest) (*models.StoreLocation, error) {
	return &models.StoreLocation{ID: id}, nil
}

func (stubInventoryService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubInventoryService) AddInventory(ctx context.Context, req inventory.AddInventoryRequest) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: uuid.New(), ProductName: req.ProductName}, nil
}

func (stubInventoryService) ListInventory(ctx context.Context, holderType string, holderID uuid.UUID) ([]models.InventoryItem, error) {
	return []models.InventoryItem{}, nil
}

func (stubInventoryService) DeleteInventory(ctx context.Context, itemID uuid.UUID) error {
	return nil
}

func (stubInventoryService) TransferStock(ctx context.Context, req inventory.TransferRequest) error {
	return nil
}

func (stubInventoryService) RecordSale(ctx context.Context, req inventory.SaleRequest) (*models.Sale, error) {
	return &models.Sale{ID: uuid.New()}, nil
}

func (stubInventoryService) ListSales(ctx context.Context, storeID uuid.UUID) ([]models.Sale, error) {
	return []models.Sale{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Request(ctx context.Context, req orders.RequestOrderRequest) (*models.StockOrder, error) {
	return &models.StockOrder{ID: uuid.New(), StoreID: req.StoreID}, nil
}

func (stubOrdersService) Approve(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	return &models.StockOrder{ID: orderID}, nil
}

func (stubOrdersService) Receive(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	return &models.StockOrder{ID: orderID}, nil
}

func (stubOrdersService) Reject(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	return &models.StockOrder{ID: orderID}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req orders.UpdateStatusRequest) (*models.StockOrder, error) {
	return &models.StockOrder{ID: orderID}, nil
}

func (stubOrdersService) List(ctx context.Context, storeID *uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:     cfg,
		Logger:     logg,
		DBPinger:   stubPinger{},
		Identity:   stubIdentityService{},
		Users:      stubUsersService{},
		Complaints: stubComplaintsService{},
		Chat:       stubChatService{},
		Inventory:  stubInventoryService{},
		Orders:     stubOrdersService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveAlwaysOK(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestComplaintRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/complaints/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestComplaintStatusRequiresReviewerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/complaints/" + uuid.NewString() + "/status"
	body := `{"status":"CLOSED"}`

	customer := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer status update got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff status update got %d", resp.Code)
	}
}

func TestUserDeleteRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/user/usersof/" + uuid.NewString()

	staff := httptest.NewRequest(http.MethodDelete, target, nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff delete got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete got %d", resp.Code)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestRegisterAcceptsValidBody(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"username":"ana","email":"ana@example.com","password":"long-enough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid registration got %d", resp.Code)
	}
}

func TestChatSendCreatesMessage(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"receiverId":"` + uuid.NewString() + `","message":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/send", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for chat send got %d", resp.Code)
	}
}

func TestInventoryTransferRequiresReviewerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"warehouseId":"` + uuid.NewString() + `","storeId":"` + uuid.NewString() + `","productName":"widget","quantity":3}`

	customer := httptest.NewRequest(http.MethodPost, "/api/inventory/transfer", strings.NewReader(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer transfer got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodPost, "/api/inventory/transfer", strings.NewReader(body))
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff transfer got %d", resp.Code)
	}
}

func TestInventoryListAllowsAnyAuthenticatedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/inventory/warehouses", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated warehouse list got %d", resp.Code)
	}
}
