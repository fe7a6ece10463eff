package paymentgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
)

func TestClient_CreateOrder(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		timeout    time.Duration
		wantErr    error
		wantHandle *OrderHandle
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/orders", r.URL.Path)
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "key_id", user)
				assert.Equal(t, "key_secret", pass)

				var req createOrderRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, createOrderRequest{Amount: 80000, Currency: "INR", Receipt: "rcpt_1"}, req)

				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(createOrderResponse{
					ID: "order_abc", Entity: "order", Amount: 80000, AmountDue: 80000,
					Currency: "INR", Receipt: "rcpt_1", Status: "created",
				})
			},
			timeout: time.Second,
			wantHandle: &OrderHandle{
				ID: "order_abc", Amount: 80000, Currency: "INR", Receipt: "rcpt_1", Status: "created",
			},
		},
		{
			name: "gateway returns 500",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"boom"}`))
			},
			timeout: time.Second,
			wantErr: apperr.ErrGatewayUnavailable,
		},
		{
			name: "gateway rejects credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			timeout: time.Second,
			wantErr: apperr.ErrGatewayUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			timeout: time.Second,
			wantErr: apperr.ErrGatewayUnavailable,
		},
		{
			name: "empty order id",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"amount":80000}`))
			},
			timeout: time.Second,
			wantErr: apperr.ErrGatewayUnavailable,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			timeout: 20 * time.Millisecond,
			wantErr: apperr.ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL+"/", "key_id", "key_secret", tt.timeout)
			got, err := c.CreateOrder(context.Background(), 80000, "INR", "rcpt_1")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, apperr.Retryable(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHandle, got)
		})
	}
}

func TestClient_CreateOrder_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "k", "s", time.Second).CreateOrder(ctx, 100, "INR", "rcpt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
