package policy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/policy"
	"github.com/jwalitptl/passwordguard/pkg/metrics"
)

var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("passwordguard_test", "policy_handler")
	})
	return testMetrics
}

type stubReloader struct {
	snap model.PolicySnapshot
	err  error
}

func (r *stubReloader) ReloadPolicy() (model.PolicySnapshot, error) {
	return r.snap, r.err
}

func newTestRouter(provider *policy.Provider, reloader Reloader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(provider, reloader, sharedMetrics(), zerolog.Nop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func decodeData(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestGetPolicyReturnsActiveSnapshot(t *testing.T) {
	provider := policy.NewProvider(model.DefaultPolicySnapshot())
	r := newTestRouter(provider, &stubReloader{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/policy", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, float64(12), data["min_length"])
	assert.Equal(t, true, data["require_special"])
	assert.Equal(t, false, data["advisory_mode"])
	assert.Equal(t, float64(1), data["generation"])
}

func TestReloadPolicyInstallsNewSnapshot(t *testing.T) {
	provider := policy.NewProvider(model.DefaultPolicySnapshot())
	relaxed := model.DefaultPolicySnapshot()
	relaxed.MinLength = 8
	relaxed.AdvisoryMode = true
	r := newTestRouter(provider, &stubReloader{snap: relaxed})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/policy/reload", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, float64(8), data["min_length"])
	assert.Equal(t, true, data["advisory_mode"])
	assert.Equal(t, float64(2), data["generation"])

	snap := provider.Snapshot()
	assert.Equal(t, 8, snap.MinLength)
	assert.Equal(t, int64(2), snap.Generation)
}

func TestReloadPolicyKeepsSnapshotOnFailure(t *testing.T) {
	provider := policy.NewProvider(model.DefaultPolicySnapshot())
	r := newTestRouter(provider, &stubReloader{err: errors.New("config unreadable")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/policy/reload", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int64(1), provider.Snapshot().Generation, "failed reload leaves the active policy untouched")
}

func TestReloadPolicyRejectsNegativeMinLength(t *testing.T) {
	provider := policy.NewProvider(model.DefaultPolicySnapshot())
	bad := model.DefaultPolicySnapshot()
	bad.MinLength = -1
	r := newTestRouter(provider, &stubReloader{snap: bad})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/policy/reload", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 12, provider.Snapshot().MinLength)
}
