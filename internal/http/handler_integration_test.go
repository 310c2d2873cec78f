//go:build integration

package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/service"
	"github.com/baryc/quote-service/internal/testutil"
)

// setupIntegrationRouter wires the router to a fresh database, the way the
// application does.
func setupIntegrationRouter(t *testing.T) (*gin.Engine, *service.QuoteCalculatorService) {
	t.Helper()
	ctx := context.Background()

	db, err := repository.NewMongoDB(testutil.SharedMongoURI(), testutil.DBName(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	store := service.NewSnapshotStore(nil)
	pricing := service.NewPricingConfigService(store, repository.NewPricingSnapshotsRepository(db))
	_, err = pricing.Load(ctx)
	require.NoError(t, err)

	calculator := service.NewQuoteCalculatorService(
		service.WithSnapshotSource(store),
		service.WithCache(100, 5*time.Minute),
	)
	t.Cleanup(calculator.Stop)
	store.Subscribe(func(_, _ *model.PricingSnapshot) { calculator.InvalidateCache() })

	cfg := DefaultRouterConfig()
	cfg.Calculator = calculator
	cfg.PricingConfig = pricing
	cfg.AuthService = stubAuth{}
	cfg.LoggingService = service.NewLoggingService(repository.NewLogsRepository(db))
	return NewRouter(NewHealthHandler(), cfg), calculator
}

func TestIntegration_PriceChangeReachesQuotes(t *testing.T) {
	router, _ := setupIntegrationRouter(t)

	before := perform(router, http.MethodPost, "/api/quote", quoteBody)
	require.Equal(t, http.StatusOK, before.Code)
	first := decodeData[model.PricingResult](t, before)
	assert.Equal(t, 1, first.SnapshotVersion)
	assert.InDelta(t, 34.80, first.Goods.TTC, 1e-9)

	w := perform(router, http.MethodPatch, "/api/admin/pricing-config/services/sanding", `{"price_ttc_per_m2":20}`, asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after := perform(router, http.MethodPost, "/api/quote", quoteBody)
	require.Equal(t, http.StatusOK, after.Code)
	second := decodeData[model.PricingResult](t, after)
	assert.Equal(t, 2, second.SnapshotVersion)
	assert.InDelta(t, 58.00, second.Goods.TTC, 1e-9)
}

func TestIntegration_AddServiceGeneratesUniqueKeys(t *testing.T) {
	router, _ := setupIntegrationRouter(t)

	keys := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		w := perform(router, http.MethodPost, "/api/admin/pricing-config/services",
			`{"label":"Cirage à l'ancienne","price_ttc_per_m2":30}`, asAdmin()...)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		keys = append(keys, decodeData[dto.AddServiceResponse](t, w).Key)
	}
	assert.Equal(t, []string{"cirage-a-l-ancienne", "cirage-a-l-ancienne-2"}, keys)

	w := perform(router, http.MethodPost, "/api/quote",
		`{"dimensions":{"length":1,"width":0.5,"height":0.8},"services":["cirage-a-l-ancienne-2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 87.00, decodeData[model.PricingResult](t, w).Goods.TTC, 1e-9)

	w = perform(router, http.MethodGet, "/api/admin/pricing-config/history", "", asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeData[[]model.PricingSnapshot](t, w)
	require.Len(t, history, 3)
	assert.Equal(t, 3, history[0].Version)
	assert.Equal(t, "admin", history[0].CreatedBy)
}

func TestIntegration_CostBasisUsesConfiguredCost(t *testing.T) {
	router, _ := setupIntegrationRouter(t)

	w := perform(router, http.MethodPut, "/api/admin/pricing-config/costs/sanding", `{"cost":6}`, asAdmin()...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(router, http.MethodPost, "/api/cost-basis", `{"quote":`+quoteBody+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeData[model.CostBasisResult](t, w)
	assert.False(t, result.Incomplete)
	require.Len(t, result.Services, 1)
	assert.Equal(t, model.CostSourceConfigured, result.Services[0].Source)
	assert.InDelta(t, 17.40, result.TotalCostBasis, 1e-9)
	require.NotNil(t, result.ProfitabilityPct)
	assert.InDelta(t, 40.0, *result.ProfitabilityPct, 1e-9)
}

func TestIntegration_UnknownServiceIs404(t *testing.T) {
	router, _ := setupIntegrationRouter(t)

	w := perform(router, http.MethodDelete, "/api/admin/pricing-config/services/gilding", "", asAdmin()...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
