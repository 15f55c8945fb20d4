// Package services содержит бизнес-логику каталога тарифных планов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

const cacheTTL = 5 * time.Minute

// PlanRepository определяет методы для работы с тарифами в хранилище.
type PlanRepository interface {
	// CreatePlan добавляет новый тариф и возвращает его.
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	// GetPlan возвращает тариф по ID.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// ListActivePlans возвращает активные тарифы с фильтром по имени и сегменту.
	ListActivePlans(ctx context.Context, nameQuery, segment string) ([]*models.Plan, error)
	// ListPlansByAdvisor возвращает тарифы, созданные асессором.
	ListPlansByAdvisor(ctx context.Context, advisorUID string) ([]*models.Plan, error)
	// UpdatePlan обновляет тариф, принадлежащий асессору.
	UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	// DeactivatePlan снимает тариф с публикации.
	DeactivatePlan(ctx context.Context, id, advisorUID string) error
	// SetPlanImage сохраняет ссылку на изображение тарифа.
	SetPlanImage(ctx context.Context, id, advisorUID, imageURL, imagePath string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// BlobStorage описывает методы хранилища файлов изображений тарифов.
type BlobStorage interface {
	// Upload загружает объект и возвращает публичный URL.
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	// Remove удаляет объекты по путям.
	Remove(ctx context.Context, objectPaths []string) error
}

// CatalogService реализует бизнес-логику каталога тарифов с кешированием
// публичного списка.
type CatalogService struct {
	repo  PlanRepository
	cache Cache
	blob  BlobStorage
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo PlanRepository, cache Cache, blob BlobStorage, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		blob:  blob,
		log:   log,
	}
}

// parsePrice разбирает цену из строки запроса. Цена обязана быть
// положительным числом.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price must be a number", apperr.ErrValidation)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive", apperr.ErrValidation)
	}
	return price, nil
}

func planFromRequest(req models.DummyPlan, price float64) models.Plan {
	segment := req.Segment
	if segment == "" {
		segment = models.SegmentBasic
	}
	return models.Plan{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		DataAllowance: req.DataAllowance,
		Minutes:       req.Minutes,
		SMS:           req.SMS,
		Speed4G:       req.Speed4G,
		Speed5G:       req.Speed5G,
		FreeMessaging: req.FreeMessaging,
		FreeSocial:    req.FreeSocial,
		International: req.International,
		Roaming:       req.Roaming,
		Segment:       segment,
	}
}

// Create публикует новый тариф от имени асессора.
func (s *CatalogService) Create(ctx context.Context, advisorUID string, req models.DummyPlan) (*models.Plan, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	plan := planFromRequest(req, price)
	plan.AdvisorUID = advisorUID
	plan.Active = true

	created, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}

	s.log.Info("created new plan", slog.String("plan_id", created.ID))
	s.invalidateListing()

	return created, nil
}

// ListActive возвращает активные тарифы, отсортированные по цене.
// Список без фильтров обслуживается из кеша.
func (s *CatalogService) ListActive(ctx context.Context, nameQuery, segment string) ([]*models.Plan, error) {
	filtered := nameQuery != "" || segment != ""

	var plans []*models.Plan
	if !filtered {
		found, err := s.cache.Get(listingCacheKey, &plans)
		if err != nil {
			s.log.Warn("failed to read plans from cache", sl.Err(err))
		}
		if found {
			return plans, nil
		}
	}

	plans, err := s.repo.ListActivePlans(ctx, nameQuery, segment)
	if err != nil {
		return nil, err
	}

	if !filtered {
		if err := s.cache.Set(listingCacheKey, plans, cacheTTL); err != nil {
			s.log.Warn("failed to cache plans", sl.Err(err))
		}
	}
	return plans, nil
}

// Get возвращает тариф по идентификатору.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

// ListByAdvisor возвращает тарифы асессора, включая снятые с публикации.
func (s *CatalogService) ListByAdvisor(ctx context.Context, advisorUID string) ([]*models.Plan, error) {
	return s.repo.ListPlansByAdvisor(ctx, advisorUID)
}

// Update обновляет тариф. Изменять тариф может только его автор.
func (s *CatalogService) Update(ctx context.Context, id, advisorUID string, req models.DummyPlan) (*models.Plan, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	plan := planFromRequest(req, price)
	plan.ID = id
	plan.AdvisorUID = advisorUID

	updated, err := s.repo.UpdatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}

	s.log.Info("updated plan", slog.String("plan_id", id))
	s.invalidateListing()

	return updated, nil
}

// Deactivate снимает тариф с публикации. Существующие контракты не
// затрагиваются.
func (s *CatalogService) Deactivate(ctx context.Context, id, advisorUID string) error {
	if err := s.repo.DeactivatePlan(ctx, id, advisorUID); err != nil {
		return err
	}

	s.log.Info("deactivated plan", slog.String("plan_id", id))
	s.invalidateListing()

	return nil
}

// UploadImage загружает изображение тарифа в объектное хранилище и
// привязывает его к тарифу. Предыдущее изображение удаляется.
func (s *CatalogService) UploadImage(ctx context.Context, id, advisorUID string, data []byte, contentType, filename string) (string, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return "", err
	}
	if plan.AdvisorUID != advisorUID {
		return "", apperr.ErrForbidden
	}

	objectPath := fmt.Sprintf("plans/%s/%s%s", id, uuid.NewString(), path.Ext(filename))
	url, err := s.blob.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetPlanImage(ctx, id, advisorUID, url, objectPath); err != nil {
		return "", err
	}

	if plan.ImagePath != "" {
		if err := s.blob.Remove(ctx, []string{plan.ImagePath}); err != nil {
			s.log.Warn("failed to remove previous plan image", sl.Err(err))
		}
	}

	s.invalidateListing()

	return url, nil
}

const listingCacheKey = "plans:active"

func (s *CatalogService) invalidateListing() {
	if err := s.cache.Invalidate(listingCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}
