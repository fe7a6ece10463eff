package check

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/download"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CanDownload(ctx context.Context, principal models.Principal, productID int64) (*download.Decision, error) {
	args := m.Called(ctx, principal, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*download.Decision), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func serve(h http.Handler, path string, principal *models.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/products/{id}/download", h.ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if principal != nil {
		req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDownloadCheckHandler(t *testing.T) {
	user := &models.Principal{UserUID: "u-1", Email: "a@example.com", Role: models.RoleUser}

	tests := []struct {
		name       string
		path       string
		principal  *models.Principal
		setup      func(s *MockService)
		wantStatus int
		wantReason string
	}{
		{
			name:      "owned product",
			path:      "/products/10/download",
			principal: user,
			setup: func(s *MockService) {
				s.On("CanDownload", mock.Anything, *user, int64(10)).
					Return(&download.Decision{Allowed: true, Reason: download.ReasonOwned, FileRef: "files/10.zip"}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantReason: download.ReasonOwned,
		},
		{
			name:      "quota exhausted",
			path:      "/products/10/download",
			principal: user,
			setup: func(s *MockService) {
				s.On("CanDownload", mock.Anything, *user, int64(10)).
					Return(&download.Decision{Allowed: false, Reason: download.ReasonLimitReached, FreeDownloadsUsed: 5}, nil).Once()
			},
			wantStatus: http.StatusForbidden,
			wantReason: download.ReasonLimitReached,
		},
		{
			name:      "unknown product",
			path:      "/products/99/download",
			principal: user,
			setup: func(s *MockService) {
				s.On("CanDownload", mock.Anything, *user, int64(99)).
					Return(nil, fmt.Errorf("op: %w", apperr.ErrNotFound)).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			path:       "/products/abc/download",
			principal:  user,
			setup:      func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no principal",
			path:       "/products/10/download",
			setup:      func(_ *MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			rec := serve(New(newNoopLogger(), svc), tt.path, tt.principal)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantReason != "" {
				var body struct {
					Data download.Decision `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantReason, body.Data.Reason)
			}
			svc.AssertExpectations(t)
		})
	}
}
