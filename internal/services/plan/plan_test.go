package plan_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/plan"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockRepo) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockRepo) CreatePlan(ctx context.Context, p models.Plan) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepo) UpdatePlan(ctx context.Context, p models.Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepo) DeletePlan(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func price(v int64) *int64 { return &v }

func TestService_Get(t *testing.T) {
	stored := &models.Plan{ID: 1, Name: "Pro", Price: 999, DurationInDays: 30}

	tests := []struct {
		name    string
		setup   func(r *MockRepo, c *MockCache)
		want    *models.Plan
		wantErr error
	}{
		{
			name: "cache hit",
			setup: func(_ *MockRepo, c *MockCache) {
				c.On("Get", mock.Anything, "plan:1", mock.Anything).Run(func(args mock.Arguments) {
					*args.Get(2).(*models.Plan) = *stored
				}).Return(true, nil).Once()
			},
			want: stored,
		},
		{
			name: "cache miss reads repository and fills cache",
			setup: func(r *MockRepo, c *MockCache) {
				c.On("Get", mock.Anything, "plan:1", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, int64(1)).Return(stored, nil).Once()
				c.On("Set", mock.Anything, "plan:1", stored, time.Duration(0)).Return(nil).Once()
			},
			want: stored,
		},
		{
			name: "cache failure falls back to repository",
			setup: func(r *MockRepo, c *MockCache) {
				c.On("Get", mock.Anything, "plan:1", mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("GetPlan", mock.Anything, int64(1)).Return(stored, nil).Once()
				c.On("Set", mock.Anything, "plan:1", stored, time.Duration(0)).Return(errors.New("redis down")).Once()
			},
			want: stored,
		},
		{
			name: "not found",
			setup: func(r *MockRepo, c *MockCache) {
				c.On("Get", mock.Anything, "plan:1", mock.Anything).Return(false, nil).Once()
				r.On("GetPlan", mock.Anything, int64(1)).Return(nil, apperr.ErrNotFound).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, c := new(MockRepo), new(MockCache)
			tt.setup(repo, c)
			svc := plan.New(repo, c, newNoopLogger())

			got, err := svc.Get(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PlanRequest
		setup   func(r *MockRepo)
		wantID  int64
		wantErr error
	}{
		{
			name: "success",
			req:  models.PlanRequest{Name: "Pro", Price: price(999), DurationInDays: 30},
			setup: func(r *MockRepo) {
				r.On("CreatePlan", mock.Anything, models.Plan{Name: "Pro", Price: 999, DurationInDays: 30}).
					Return(int64(5), nil).Once()
			},
			wantID: 5,
		},
		{
			name:    "negative price",
			req:     models.PlanRequest{Name: "Pro", Price: price(-1), DurationInDays: 30},
			setup:   func(_ *MockRepo) {},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "zero duration",
			req:     models.PlanRequest{Name: "Pro", Price: price(1)},
			setup:   func(_ *MockRepo) {},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			tt.setup(repo)
			svc := plan.New(repo, new(MockCache), newNoopLogger())

			got, err := svc.Create(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	tests := []struct {
		name    string
		run     func(svc *plan.Service) error
		setup   func(r *MockRepo, c *MockCache)
		wantErr error
	}{
		{
			name: "update invalidates cache",
			run: func(svc *plan.Service) error {
				_, err := svc.Update(context.Background(), 3, models.PlanRequest{Name: "Pro", Price: price(1099), DurationInDays: 30})
				return err
			},
			setup: func(r *MockRepo, c *MockCache) {
				r.On("UpdatePlan", mock.Anything, models.Plan{ID: 3, Name: "Pro", Price: 1099, DurationInDays: 30}).Return(nil).Once()
				c.On("Invalidate", mock.Anything, "plan:3").Return(nil).Once()
			},
		},
		{
			name: "update rejected while in use",
			run: func(svc *plan.Service) error {
				_, err := svc.Update(context.Background(), 3, models.PlanRequest{Name: "Pro", Price: price(1), DurationInDays: 30})
				return err
			},
			setup: func(r *MockRepo, _ *MockCache) {
				r.On("UpdatePlan", mock.Anything, mock.Anything).Return(apperr.ErrInUse).Once()
			},
			wantErr: apperr.ErrInUse,
		},
		{
			name: "delete invalidates cache even when invalidation fails",
			run: func(svc *plan.Service) error {
				return svc.Delete(context.Background(), 4)
			},
			setup: func(r *MockRepo, c *MockCache) {
				r.On("DeletePlan", mock.Anything, int64(4)).Return(nil).Once()
				c.On("Invalidate", mock.Anything, "plan:4").Return(errors.New("redis down")).Once()
			},
		},
		{
			name: "delete rejected while in use",
			run: func(svc *plan.Service) error {
				return svc.Delete(context.Background(), 4)
			},
			setup: func(r *MockRepo, _ *MockCache) {
				r.On("DeletePlan", mock.Anything, int64(4)).Return(apperr.ErrInUse).Once()
			},
			wantErr: apperr.ErrInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, c := new(MockRepo), new(MockCache)
			tt.setup(repo, c)
			svc := plan.New(repo, c, newNoopLogger())

			err := tt.run(svc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	repo := new(MockRepo)
	plans := []*models.Plan{{ID: 1, Name: "Free"}, {ID: 2, Name: "Pro", Price: 999}}
	repo.On("ListPlans", mock.Anything).Return(plans, nil).Once()

	got, err := plan.New(repo, new(MockCache), newNoopLogger()).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plans, got)
}
