package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/mocks"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/service"
)

const adminToken = "admin-token"

// stubAuth accepts adminToken and the password "restore123".
type stubAuth struct{}

func (stubAuth) Login(_ context.Context, username, password string) (*dto.LoginResponse, error) {
	if username != "admin" || password != "restore123" {
		return nil, service.ErrInvalidCredentials
	}
	return &dto.LoginResponse{Token: adminToken, TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func (stubAuth) ValidateToken(_ context.Context, token string) (*dto.Claims, error) {
	if token != adminToken {
		return nil, service.ErrInvalidToken
	}
	return &dto.Claims{Subject: "admin", Role: dto.AdminRole}, nil
}

// memoryLogs records entries and serves them back to the audit route.
type memoryLogs struct {
	mu      sync.Mutex
	entries []model.LogEntry
	written chan struct{}
}

func newMemoryLogs() *memoryLogs {
	return &memoryLogs{written: make(chan struct{}, 64)}
}

func (m *memoryLogs) CreateLog(_ context.Context, entry *model.LogEntry) error {
	m.mu.Lock()
	m.entries = append(m.entries, *entry)
	m.mu.Unlock()
	select {
	case m.written <- struct{}{}:
	default:
	}
	return nil
}

func (m *memoryLogs) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	for _, e := range entries {
		_ = m.CreateLog(ctx, e)
	}
	return nil
}

func (m *memoryLogs) QueryLogs(_ context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LogEntry
	for _, e := range m.entries {
		if opts.AuditOnly && !e.IsAudit() {
			continue
		}
		if opts.ActionType != "" && e.ActionType != opts.ActionType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryLogs) CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	entries, _ := m.QueryLogs(ctx, opts)
	return int64(len(entries)), nil
}

// waitAudit waits for an entry with the given action type.
func (m *memoryLogs) waitAudit(t *testing.T, action string) model.LogEntry {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		m.mu.Lock()
		for _, e := range m.entries {
			if e.ActionType == action {
				m.mu.Unlock()
				return e
			}
		}
		m.mu.Unlock()
		select {
		case <-m.written:
		case <-deadline:
			t.Fatalf("no audit entry for %s", action)
		}
	}
}

func setupAdminRouter(t *testing.T, logs service.LoggingService) (*gin.Engine, *mocks.MockPricingConfigService) {
	pricing := mocks.NewMockPricingConfigService(t)
	cfg := DefaultRouterConfig()
	cfg.Calculator = service.NewQuoteCalculatorService()
	cfg.PricingConfig = pricing
	cfg.AuthService = stubAuth{}
	cfg.LoggingService = logs
	return NewRouter(NewHealthHandler(), cfg), pricing
}

func asAdmin() []string {
	return []string{"Authorization", "Bearer " + adminToken}
}

func snapshotV(version int) *model.PricingSnapshot {
	snap := model.DefaultSnapshot()
	snap.Version = version
	return snap
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	router, _ := setupAdminRouter(t, nil)

	tests := []struct {
		name    string
		headers []string
	}{
		{name: "no token"},
		{name: "wrong token", headers: []string{"Authorization", "Bearer nope"}},
		{name: "not bearer", headers: []string{"Authorization", "Basic YWRtaW4="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodDelete, "/api/admin/pricing-config/services/sanding", "", tt.headers...)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, w).Error)
		})
	}
}

func TestAdminHandler_AddService(t *testing.T) {
	logs := newMemoryLogs()
	router, pricing := setupAdminRouter(t, logs)

	pricing.On("AddService", mock.Anything, "Ponçage de finition", 15.0, "admin").
		Return("poncage-de-finition-2", snapshotV(4), nil).Once()

	w := perform(router, http.MethodPost, "/api/admin/pricing-config/services",
		`{"label":"Ponçage de finition","price_ttc_per_m2":15}`, asAdmin()...)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeData[dto.AddServiceResponse](t, w)
	assert.Equal(t, "poncage-de-finition-2", resp.Key)
	assert.Equal(t, 4, resp.Snapshot.Version)

	entry := logs.waitAudit(t, model.ActionAddService)
	assert.Equal(t, "admin", entry.Actor)
	assert.Equal(t, 4, entry.SnapshotVersion)
	assert.Equal(t, "poncage-de-finition-2", entry.Fields["key"])
}

func TestAdminHandler_AddService_Validation(t *testing.T) {
	router, _ := setupAdminRouter(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing price", body: `{"label":"Cirage"}`},
		{name: "negative price", body: `{"label":"Cirage","price_ttc_per_m2":-1}`},
		{name: "blank label", body: `{"label":"   ","price_ttc_per_m2":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/api/admin/pricing-config/services", tt.body, asAdmin()...)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAdminHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "unknown key", err: fmt.Errorf("update: %w", model.ErrServiceNotFound), expectedStatus: http.StatusNotFound, expectedCode: dto.ErrCodeNotFound},
		{name: "invalid snapshot", err: fmt.Errorf("%w: negative price", model.ErrInvalidSnapshot), expectedStatus: http.StatusBadRequest, expectedCode: dto.ErrCodeInvalidRequest},
		{name: "concurrent change", err: fmt.Errorf("save: %w", repository.ErrVersionConflict), expectedStatus: http.StatusConflict, expectedCode: dto.ErrCodeConflict},
		{name: "storage down", err: repository.ErrStorageUnavailable, expectedStatus: http.StatusServiceUnavailable, expectedCode: dto.ErrCodeUnavailable},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedCode: dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, pricing := setupAdminRouter(t, nil)
			pricing.On("RemoveService", mock.Anything, "sanding", "admin").Return(nil, tt.err).Once()

			w := perform(router, http.MethodDelete, "/api/admin/pricing-config/services/sanding", "", asAdmin()...)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
		})
	}
}

func TestAdminHandler_UpdateService(t *testing.T) {
	router, pricing := setupAdminRouter(t, nil)

	price := 14.0
	pricing.On("UpdateService", mock.Anything, "sanding", service.ServiceUpdate{PriceTTCPerArea: &price}, "admin").
		Return(snapshotV(2), nil).Once()

	w := perform(router, http.MethodPatch, "/api/admin/pricing-config/services/sanding", `{"price_ttc_per_m2":14}`, asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decodeData[model.PricingSnapshot](t, w).Version)

	w = perform(router, http.MethodPatch, "/api/admin/pricing-config/services/sanding", `{}`, asAdmin()...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_SetCost(t *testing.T) {
	router, pricing := setupAdminRouter(t, nil)

	cost := 6.5
	pricing.On("SetCostPerArea", mock.Anything, "sanding", &cost, "admin").Return(snapshotV(5), nil).Once()
	pricing.On("SetCostPerArea", mock.Anything, "varnish", (*float64)(nil), "admin").Return(snapshotV(6), nil).Once()

	w := perform(router, http.MethodPut, "/api/admin/pricing-config/costs/sanding", `{"cost":6.5}`, asAdmin()...)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(router, http.MethodPut, "/api/admin/pricing-config/costs/varnish", `{"cost":null}`, asAdmin()...)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(router, http.MethodPut, "/api/admin/pricing-config/costs/sanding", `{"cost":-2}`, asAdmin()...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_ReplaceAndHistory(t *testing.T) {
	router, pricing := setupAdminRouter(t, nil)

	pricing.On("Replace", mock.Anything, mock.MatchedBy(func(s *model.PricingSnapshot) bool {
		return s.VATRate == 0.1 && s.TargetHourlyRate == 60
	}), "admin").Return(snapshotV(7), nil).Once()
	pricing.On("History", mock.Anything, 50).Return([]model.PricingSnapshot{*snapshotV(7), *snapshotV(6)}, nil).Once()
	pricing.On("History", mock.Anything, 2).Return([]model.PricingSnapshot{*snapshotV(7)}, nil).Once()

	w := perform(router, http.MethodPut, "/api/admin/pricing-config", `{"vat_rate":0.1,"target_hourly_rate":60}`, asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(router, http.MethodGet, "/api/admin/pricing-config/history", "", asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]model.PricingSnapshot](t, w), 2)

	w = perform(router, http.MethodGet, "/api/admin/pricing-config/history?limit=2", "", asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)

	// limits above the configured maximum are capped
	pricing.On("History", mock.Anything, 50).Return([]model.PricingSnapshot{}, nil).Once()
	w = perform(router, http.MethodGet, "/api/admin/pricing-config/history?limit=9999", "", asAdmin()...)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminHandler_AuditLog(t *testing.T) {
	logs := newMemoryLogs()
	router, pricing := setupAdminRouter(t, logs)

	pricing.On("RemoveService", mock.Anything, "stain", "admin").Return(snapshotV(3), nil).Once()
	w := perform(router, http.MethodDelete, "/api/admin/pricing-config/services/stain", "", asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)
	logs.waitAudit(t, model.ActionRemoveService)

	w = perform(router, http.MethodGet, "/api/admin/audit?action=remove_service", "", asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decodeData[dto.AuditLogResponse](t, w)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, 3, page.Entries[0].SnapshotVersion)

	w = perform(router, http.MethodGet, "/api/admin/audit?since=yesterday", "", asAdmin()...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/admin/audit?action=drop_tables", "", asAdmin()...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]string{"action": "unknown action type"}, decodeError(t, w).Details)
}

func TestAdminHandler_AuditLogDisabled(t *testing.T) {
	router, _ := setupAdminRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/admin/audit", "", asAdmin()...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
