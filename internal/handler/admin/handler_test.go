package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/passwordguard/internal/middleware"
	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/service/audit"
	"github.com/jwalitptl/passwordguard/pkg/auth"
)

type fixedDecisionRepo struct {
	records []*model.DecisionRecord
}

func (r *fixedDecisionRepo) Create(_ context.Context, record *model.DecisionRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *fixedDecisionRepo) List(_ context.Context, username string, limit int) ([]*model.DecisionRecord, error) {
	var out []*model.DecisionRecord
	for _, rec := range r.records {
		if rec.Username == username && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fixedDecisionRepo) Cleanup(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(jwtSvc auth.JWTService, repo *fixedDecisionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewHandler(jwtSvc, audit.NewService(repo), zerolog.Nop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestIssueTokenReturnsValidToken(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	r := newTestRouter(jwtSvc, &fixedDecisionRepo{})

	body := bytes.NewBufferString(`{"subject":"ops-tooling"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tokens", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)

	subject, err := jwtSvc.ValidateToken(envelope.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops-tooling", subject)
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	r := newTestRouter(auth.NewJWTService("test-secret", time.Hour), &fixedDecisionRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tokens", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDecisionsReturnsHistory(t *testing.T) {
	repo := &fixedDecisionRepo{}
	svc := audit.NewService(repo)
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), "bob", model.DecisionRejected, false, &audit.RecordOptions{
			ViolationCodes: []string{"too_short"},
		})
		require.NoError(t, err)
	}

	r := newTestRouter(auth.NewJWTService("test-secret", time.Hour), repo)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/decisions?username=bob&limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Decisions []map[string]interface{} `json:"decisions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Decisions, 2)
	assert.Equal(t, "bob", envelope.Data.Decisions[0]["username"])
	assert.Equal(t, "rejected", envelope.Data.Decisions[0]["decision"])
}

func TestListDecisionsRequiresUsername(t *testing.T) {
	r := newTestRouter(auth.NewJWTService("test-secret", time.Hour), &fixedDecisionRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/decisions", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
