package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherlight/readygate/internal/engine"
	"github.com/aetherlight/readygate/internal/gaplog"
)

type stubScorer struct{ confidence float64 }

func (s stubScorer) ScoreTask(_ context.Context, taskID string) (*engine.TaskScore, error) {
	return &engine.TaskScore{TaskID: taskID, Confidence: s.confidence}, nil
}

type stubValidator struct{}

func (stubValidator) Validate(_ context.Context, wctx *engine.Context) (*engine.ValidationReport, error) {
	return &engine.ValidationReport{Valid: wctx.TestFilesExist, TaskID: wctx.TaskID}, nil
}

type stubCatalog struct{}

func (stubCatalog) Exists(string) bool { return true }

func newTestServer(t *testing.T, gapLogPath string) *Server {
	t.Helper()
	eng := engine.New(engine.Options{
		Scorer:    stubScorer{confidence: 0.9},
		Validator: stubValidator{},
		Patterns:  stubCatalog{},
		Agents:    stubCatalog{},
	})
	srv, err := NewServer(eng, gapLogPath, nil, nil)
	require.NoError(t, err)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCheck_OK(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"workflow_type":"code","context":{"task_id":"PROTO-001","test_files_exist":true,"git_clean":true}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result engine.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, engine.WorkflowCode, result.WorkflowType)
	assert.NotEmpty(t, result.Prerequisites)
	assert.False(t, result.CriticalJunction)
}

func TestCheck_UnknownType(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"workflow_type":"deploy","context":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck_MissingType(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", strings.NewReader(`{"context":{}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck_MalformedBody(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.jsonl")
	log, err := gaplog.Open(path)
	require.NoError(t, err)
	for _, desc := range []string{"one", "two", "three"} {
		require.NoError(t, log.Append(context.Background(), engine.GapRecord{Description: desc}))
	}
	require.NoError(t, log.Close())

	srv := newTestServer(t, path)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gaps?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var records []engine.GapRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Description)
}

func TestGaps_EmptyLogIsEmptyArray(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "absent.jsonl"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gaps", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGaps_InvalidLimit(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "gaps.jsonl"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gaps?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGaps_NotConfigured(t *testing.T) {
	srv := newTestServer(t, "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gaps", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServer_NilEngine(t *testing.T) {
	_, err := NewServer(nil, "", nil, nil)
	require.Error(t, err)
}
