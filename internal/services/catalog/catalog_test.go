package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) ListActivePlans(ctx context.Context, nameQuery, segment string) ([]*models.Plan, error) {
	args := m.Called(ctx, nameQuery, segment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}
func (m *RepoMock) ListPlansByAdvisor(ctx context.Context, advisorUID string) ([]*models.Plan, error) {
	args := m.Called(ctx, advisorUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}
func (m *RepoMock) UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) DeactivatePlan(ctx context.Context, id, advisorUID string) error {
	return m.Called(ctx, id, advisorUID).Error(0)
}
func (m *RepoMock) SetPlanImage(ctx context.Context, id, advisorUID, imageURL, imagePath string) error {
	return m.Called(ctx, id, advisorUID, imageURL, imagePath).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type BlobMock struct{ mock.Mock }

func (m *BlobMock) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectPath, data, contentType)
	return args.String(0), args.Error(1)
}
func (m *BlobMock) Remove(ctx context.Context, objectPaths []string) error {
	return m.Called(ctx, objectPaths).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const (
	testPlanID  = "5b7a0b2e-7d37-4a27-9297-0d9f2f60fb01"
	testAdvisor = "advisor-uid"
)

func testDummyPlan() models.DummyPlan {
	return models.DummyPlan{
		Name:          "Plan S",
		Description:   "Базовый тариф",
		Price:         "19.90",
		DataAllowance: "10GB",
		Minutes:       "300",
		SMS:           "100",
		Speed4G:       "50Mbps",
		Segment:       models.SegmentBasic,
	}
}

func TestCatalogService_Create(t *testing.T) {
	t.Run("success create parses price and invalidates cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
			return p.Name == "Plan S" && p.Price == 19.90 && p.Active && p.AdvisorUID == testAdvisor
		})).Return(&models.Plan{ID: testPlanID, Name: "Plan S", Price: 19.90, Active: true}, nil).Once()
		cache.On("Invalidate", "plans:active").Return(nil).Once()

		svc := NewCatalogService(repo, cache, new(BlobMock), newNoopLogger())
		plan, err := svc.Create(context.Background(), testAdvisor, testDummyPlan())

		require.NoError(t, err)
		assert.Equal(t, testPlanID, plan.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("non-numeric price fails validation", func(t *testing.T) {
		req := testDummyPlan()
		req.Price = "cheap"

		svc := NewCatalogService(new(RepoMock), new(CacheMock), new(BlobMock), newNoopLogger())
		_, err := svc.Create(context.Background(), testAdvisor, req)

		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("negative price fails validation", func(t *testing.T) {
		req := testDummyPlan()
		req.Price = "-5"

		svc := NewCatalogService(new(RepoMock), new(CacheMock), new(BlobMock), newNoopLogger())
		_, err := svc.Create(context.Background(), testAdvisor, req)

		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCatalogService_ListActive(t *testing.T) {
	t.Run("unfiltered listing served from cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		cache.On("Get", "plans:active", mock.Anything).Return(true, nil).Once()

		svc := NewCatalogService(repo, cache, new(BlobMock), newNoopLogger())
		_, err := svc.ListActive(context.Background(), "", "")

		require.NoError(t, err)
		repo.AssertNotCalled(t, "ListActivePlans")
	})

	t.Run("cache miss hits the repository and fills cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		plans := []*models.Plan{{ID: testPlanID, Name: "Plan S"}}
		cache.On("Get", "plans:active", mock.Anything).Return(false, nil).Once()
		repo.On("ListActivePlans", mock.Anything, "", "").Return(plans, nil).Once()
		cache.On("Set", "plans:active", plans, mock.Anything).Return(nil).Once()

		svc := NewCatalogService(repo, cache, new(BlobMock), newNoopLogger())
		got, err := svc.ListActive(context.Background(), "", "")

		require.NoError(t, err)
		assert.Len(t, got, 1)
		cache.AssertExpectations(t)
	})

	t.Run("filtered listing bypasses cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		repo.On("ListActivePlans", mock.Anything, "plan", models.SegmentPremium).
			Return([]*models.Plan{}, nil).Once()

		svc := NewCatalogService(repo, cache, new(BlobMock), newNoopLogger())
		_, err := svc.ListActive(context.Background(), "plan", models.SegmentPremium)

		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get")
		cache.AssertNotCalled(t, "Set")
	})
}

func TestCatalogService_Deactivate(t *testing.T) {
	t.Run("success deactivate", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		repo.On("DeactivatePlan", mock.Anything, testPlanID, testAdvisor).Return(nil).Once()
		cache.On("Invalidate", "plans:active").Return(nil).Once()

		svc := NewCatalogService(repo, cache, new(BlobMock), newNoopLogger())
		err := svc.Deactivate(context.Background(), testPlanID, testAdvisor)

		assert.NoError(t, err)
	})

	t.Run("foreign plan yields not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeactivatePlan", mock.Anything, testPlanID, testAdvisor).
			Return(apperr.ErrNotFound).Once()

		svc := NewCatalogService(repo, new(CacheMock), new(BlobMock), newNoopLogger())
		err := svc.Deactivate(context.Background(), testPlanID, testAdvisor)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCatalogService_UploadImage(t *testing.T) {
	t.Run("success upload replaces previous image", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		blob := new(BlobMock)

		repo.On("GetPlan", mock.Anything, testPlanID).
			Return(&models.Plan{ID: testPlanID, AdvisorUID: testAdvisor, ImagePath: "plans/old.png"}, nil).Once()
		blob.On("Upload", mock.Anything, mock.MatchedBy(func(p string) bool {
			return len(p) > 0
		}), []byte("img"), "image/png").Return("https://cdn/plans/new.png", nil).Once()
		repo.On("SetPlanImage", mock.Anything, testPlanID, testAdvisor, "https://cdn/plans/new.png", mock.Anything).
			Return(nil).Once()
		blob.On("Remove", mock.Anything, []string{"plans/old.png"}).Return(nil).Once()
		cache.On("Invalidate", "plans:active").Return(nil).Once()

		svc := NewCatalogService(repo, cache, blob, newNoopLogger())
		url, err := svc.UploadImage(context.Background(), testPlanID, testAdvisor, []byte("img"), "image/png", "promo.png")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn/plans/new.png", url)
		blob.AssertExpectations(t)
	})

	t.Run("foreign plan yields forbidden", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, testPlanID).
			Return(&models.Plan{ID: testPlanID, AdvisorUID: "other"}, nil).Once()

		svc := NewCatalogService(repo, new(CacheMock), new(BlobMock), newNoopLogger())
		_, err := svc.UploadImage(context.Background(), testPlanID, testAdvisor, []byte("img"), "image/png", "promo.png")

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}
