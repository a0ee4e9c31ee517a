package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/metrics"
	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

func newTestClient(t *testing.T, r chi.Router) (*Client, *metrics.Metrics) {
	t.Helper()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	m := metrics.New()
	return New(srv.URL, 5*time.Second, slog.Default(), WithMetrics(m)), m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_BearerAndDecode(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad token"})
			return
		}
		writeJSON(w, http.StatusOK, market.Balance{Balance: 500, Currency: "KZT"})
	})

	c, _ := newTestClient(t, r)

	b, err := c.Balance(context.Background(), "tok1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, b.Balance)
	assert.Equal(t, "KZT", b.Currency)

	_, err = c.Balance(context.Background(), "other")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.ErrorIs(t, err, errs.ErrServerRejected)
}

func TestClient_ServerErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantExists  bool
	}{
		{
			name:        "message in body",
			status:      http.StatusBadRequest,
			body:        `{"message":"Недостаточно средств"}`,
			wantMessage: "Недостаточно средств",
		},
		{
			name:   "no body",
			status: http.StatusInternalServerError,
			body:   ``,
		},
		{
			name:   "html body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
		{
			name:        "conflict",
			status:      http.StatusConflict,
			body:        `{"message":"chat exists"}`,
			wantMessage: "chat exists",
			wantExists:  true,
		},
		{
			name:        "already exists text",
			status:      http.StatusBadRequest,
			body:        `{"message":"Chat already exists"}`,
			wantMessage: "Chat already exists",
			wantExists:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/api/chats", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			c, _ := newTestClient(t, r)
			_, err := c.CreateChat(context.Background(), "tok", market.CreateChatRequest{ParticipantID: "u2", ProductID: "p1"})

			var se *errs.ServerError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.wantMessage, se.Message)
			assert.Equal(t, tt.wantExists, IsAlreadyExists(err))
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, slog.Default())
	err := c.HealthCheck(context.Background())

	assert.ErrorIs(t, err, errs.ErrNetwork)
	assert.NotErrorIs(t, err, errs.ErrServerRejected)
}

func TestClient_PagedMessages(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chats/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", chi.URLParam(r, "id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, market.Page[market.Message]{
			Items:      []market.Message{{ID: "m11", ChatID: "c1"}},
			Pagination: &market.Pagination{Total: 11, Page: 2, Limit: 10, Pages: 2},
		})
	})

	c, m := newTestClient(t, r)
	page, err := c.Messages(context.Background(), "tok", "c1", market.PageQuery{Page: 2, Limit: 10})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Pagination)
	assert.False(t, page.Pagination.HasNext())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "2xx")))
}

func TestClient_SendsJSONBody(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/admin/products/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req market.RejectRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "spam", req.Reason)
		writeJSON(w, http.StatusOK, market.Product{ID: chi.URLParam(r, "id"), Status: market.ProductRejected})
	})

	c, _ := newTestClient(t, r)
	p, err := c.RejectProduct(context.Background(), "tok", "p1", market.RejectRequest{Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, market.ProductRejected, p.Status)
}

func TestClient_EmptySuccessBody(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/favorites/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c, _ := newTestClient(t, r)
	assert.NoError(t, c.RemoveFavorite(context.Background(), "tok", "p1"))
}
