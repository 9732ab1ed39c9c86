package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/rally-detour/internal/adapter/httpadapter"
	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/feedback"
	"github.com/couchcryptid/rally-detour/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	readyErr    error
	dataErr     error
	feedbackErr error
	duplicate   bool

	gotDay      domain.Date
	gotYear     int
	gotMonth    time.Month
	gotFeedback pipeline.FeedbackRequest
	gotOpts     domain.KeywordOptions
	gotTop      int
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockService) Day(_ context.Context, d domain.Date) (pipeline.DayView, error) {
	m.gotDay = d
	if m.dataErr != nil {
		return pipeline.DayView{}, m.dataErr
	}
	return pipeline.DayView{
		Date: d,
		Events: []pipeline.EventView{{
			Event: domain.Event{Date: d, Start: "10:00", End: "12:00", Location: "광화문광장"},
			Level: domain.LevelLow,
		}},
	}, nil
}

func (m *mockService) Month(_ context.Context, year int, month time.Month) ([]domain.CalendarEntry, error) {
	m.gotYear, m.gotMonth = year, month
	if m.dataErr != nil {
		return nil, m.dataErr
	}
	return []domain.CalendarEntry{{Date: domain.NewDate(year, month, 15), Start: "10:00", End: "12:00", Location: "광화문광장", Level: domain.LevelHigh}}, nil
}

func (m *mockService) AppendFeedback(_ context.Context, req pipeline.FeedbackRequest) (feedback.AppendResult, error) {
	m.gotFeedback = req
	if m.feedbackErr != nil {
		return feedback.AppendResult{}, m.feedbackErr
	}
	rec := domain.FeedbackRecord{Date: req.Date.String(), Feedback: req.Feedback, DupeKey: "abc"}
	return feedback.AppendResult{Record: rec, Duplicate: m.duplicate}, nil
}

func (m *mockService) Keywords(_ context.Context, opts domain.KeywordOptions, top int) ([]domain.TermCount, error) {
	m.gotOpts, m.gotTop = opts, top
	return []domain.TermCount{{Term: "우회", Count: 3}}, nil
}

func (m *mockService) ContextText(_ context.Context) (string, error) {
	return "광화문 일대 통제", nil
}

func newTestServer(svc *mockService) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, slog.Default())
}

func serve(srv *httpadapter.Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockService{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	rec := serve(newTestServer(&mockService{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newTestServer(&mockService{readyErr: fmt.Errorf("event table not loaded")}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockService{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDay(t *testing.T) {
	t.Run("returns the day view", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(newTestServer(svc), http.MethodGet, "/api/days/2025-08-15", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, domain.NewDate(2025, time.August, 15), svc.gotDay)

		body := decode(t, rec)
		assert.Equal(t, "2025-08-15", body["date"])
		events := body["events"].([]any)
		require.Len(t, events, 1)
		assert.Equal(t, "광화문광장", events[0].(map[string]any)["location"])
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		rec := serve(newTestServer(&mockService{}), http.MethodGet, "/api/days/2025.08.15", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reports unavailable event data", func(t *testing.T) {
		svc := &mockService{dataErr: &domain.SchemaError{Source: "events", Field: domain.FieldLocation}}
		rec := serve(newTestServer(svc), http.MethodGet, "/api/days/2025-08-15", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "location")
	})
}

func TestMonth(t *testing.T) {
	svc := &mockService{}
	rec := serve(newTestServer(svc), http.MethodGet, "/api/months/2025-08", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, svc.gotYear)
	assert.Equal(t, time.August, svc.gotMonth)

	body := decode(t, rec)
	assert.Equal(t, "2025-08", body["month"])
	assert.Len(t, body["entries"], 1)

	rec = serve(newTestServer(svc), http.MethodGet, "/api/months/2025-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedback(t *testing.T) {
	const body = `{"date":"2025-08-15","start":"10:00","end":"12:00","location":"광화문광장","feedback":"우회 안내가 늦었어요"}`

	t.Run("stored", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(newTestServer(svc), http.MethodPost, "/api/feedback", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "stored", decode(t, rec)["status"])
		assert.Equal(t, pipeline.FeedbackRequest{
			Date:     domain.NewDate(2025, time.August, 15),
			Start:    "10:00",
			End:      "12:00",
			Location: "광화문광장",
			Feedback: "우회 안내가 늦었어요",
		}, svc.gotFeedback)
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := serve(newTestServer(&mockService{duplicate: true}), http.MethodPost, "/api/feedback", body)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decode(t, rec)
		assert.Equal(t, "duplicate", got["status"])
		assert.Equal(t, "abc", got["dupe_key"])
	})

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"invalid json", `{"date":`, nil, http.StatusBadRequest},
		{"invalid date", `{"date":"15/08/2025","feedback":"x"}`, nil, http.StatusBadRequest},
		{"missing date", `{"feedback":"x"}`, nil, http.StatusBadRequest},
		{"empty feedback", body, domain.ErrEmptyFeedback, http.StatusBadRequest},
		{"unknown event", body, pipeline.ErrEventNotFound, http.StatusNotFound},
		{"store failure", body, errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(&mockService{feedbackErr: tt.err}), http.MethodPost, "/api/feedback", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestKeywords(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(newTestServer(svc), http.MethodGet, "/api/keywords", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 50, svc.gotTop)
		assert.Equal(t, domain.KeywordOptions{}, svc.gotOpts)
		assert.Len(t, decode(t, rec)["terms"], 1)
	})

	t.Run("query parameters", func(t *testing.T) {
		svc := &mockService{}
		rec := serve(newTestServer(svc), http.MethodGet, "/api/keywords?date=2025-08-15&bigrams=true&top=5", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, svc.gotTop)
		assert.Equal(t, domain.KeywordOptions{Date: domain.NewDate(2025, time.August, 15), Bigrams: true}, svc.gotOpts)
	})

	for _, q := range []string{"date=yesterday", "bigrams=maybe", "top=-1", "top=ten"} {
		t.Run("rejects "+q, func(t *testing.T) {
			rec := serve(newTestServer(&mockService{}), http.MethodGet, "/api/keywords?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestContext(t *testing.T) {
	rec := serve(newTestServer(&mockService{}), http.MethodGet, "/api/context", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "광화문 일대 통제", rec.Body.String())
}
