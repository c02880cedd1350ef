package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiofinder_backend/internal/algorithms"
	"studiofinder_backend/internal/cache"
	"studiofinder_backend/internal/geocoding"
	"studiofinder_backend/internal/imageprocessor"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/storage"
	"studiofinder_backend/pkg/apperrors"
)

const (
	MaxImageBytes       = 10 << 20
	MaxImagesPerStudio  = 12
	DefaultSearchRadius = 50.0
	MinSuggestionLength = 2
	MaxSuggestions      = 10
)

type StudioService interface {
	// Public
	GetByUsername(db *gorm.DB, username string) (*models.StudioProfile, error)
	Featured(db *gorm.DB) ([]dto.StudioSummary, error)
	Search(ctx context.Context, db *gorm.DB, req *dto.SearchStudiosRequest) (*dto.SearchStudiosResponse, error)
	Suggestions(ctx context.Context, db *gorm.DB, q string) ([]dto.Suggestion, error)

	// Owner
	GetMine(db *gorm.DB, userID string) (*models.StudioProfile, error)
	UpdateMine(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateStudioRequest) (*models.StudioProfile, error)
	UploadImage(ctx context.Context, db *gorm.DB, userID string, data []byte, altText string) (*models.StudioImage, error)
	DeleteImage(ctx context.Context, db *gorm.DB, userID, imageID string) error
	ReorderImages(db *gorm.DB, userID string, imageIDs []string) ([]models.StudioImage, error)
}

type StudioServiceImpl struct {
	studioRepo repositories.StudioRepository
	imageRepo  repositories.ImageRepository
	geocoder   geocoding.Geocoder
	storage    storage.Storage
	processor  *imageprocessor.Processor
	cache      cache.SuggestionCache
}

func NewStudioService(
	studioRepo repositories.StudioRepository,
	imageRepo repositories.ImageRepository,
	geocoder geocoding.Geocoder,
	store storage.Storage,
	processor *imageprocessor.Processor,
	suggestionCache cache.SuggestionCache,
) StudioService {
	return &StudioServiceImpl{
		studioRepo: studioRepo,
		imageRepo:  imageRepo,
		geocoder:   geocoder,
		storage:    store,
		processor:  processor,
		cache:      suggestionCache,
	}
}

// ==========================
// Public
// ==========================

func (s *StudioServiceImpl) GetByUsername(db *gorm.DB, username string) (*models.StudioProfile, error) {
	studio, err := s.studioRepo.FindPublicByUsername(db, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, handleRepoError(err)
	}
	return studio, nil
}

func (s *StudioServiceImpl) Featured(db *gorm.DB) ([]dto.StudioSummary, error) {
	studios, err := s.studioRepo.ListFeatured(db, models.MaxFeaturedStudios)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.StudioSummary, 0, len(studios))
	for i := range studios {
		out = append(out, dto.NewStudioSummary(&studios[i]))
	}
	return out, nil
}

// Search narrows candidates in SQL (text, type, city, bounding box) and
// then applies the exact radius and ranking in memory.
func (s *StudioServiceImpl) Search(ctx context.Context, db *gorm.DB, req *dto.SearchStudiosRequest) (*dto.SearchStudiosResponse, error) {
	filter := repositories.StudioSearchFilter{
		Query:      strings.TrimSpace(req.Query),
		StudioType: models.StudioType(strings.ToUpper(req.StudioType)),
		City:       strings.TrimSpace(req.City),
	}

	center, err := s.searchCenter(ctx, req)
	if err != nil {
		return nil, err
	}
	if center == nil && strings.TrimSpace(req.Location) != "" && filter.City == "" {
		// Location could not be resolved; fall back to matching it as a city.
		filter.City = strings.TrimSpace(req.Location)
	}
	if center != nil {
		box := algorithms.BoxAround(algorithms.Point{Lat: center.Lat, Lng: center.Lng}, center.RadiusKm)
		filter.Box = &box
	}

	candidates, err := s.studioRepo.SearchCandidates(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byID := make(map[string]*models.StudioProfile, len(candidates))
	ranked := make([]algorithms.Rankable, 0, len(candidates))
	for i := range candidates {
		studio := &candidates[i]
		item := algorithms.Rankable{ID: studio.ID, Featured: studio.IsFeatured, UpdatedAt: studio.UpdatedAt}
		if center != nil && studio.Latitude != nil && studio.Longitude != nil {
			d := algorithms.HaversineKm(
				algorithms.Point{Lat: center.Lat, Lng: center.Lng},
				algorithms.Point{Lat: *studio.Latitude, Lng: *studio.Longitude},
			)
			if d > center.RadiusKm {
				continue
			}
			item.DistanceKm = &d
		}
		byID[studio.ID] = studio
		ranked = append(ranked, item)
	}
	algorithms.RankResults(ranked)

	page, pageSize := normalizePage(req.Page, req.PageSize)
	start, end := algorithms.Page(len(ranked), page, pageSize)

	hits := make([]dto.StudioSummary, 0, end-start)
	for _, item := range ranked[start:end] {
		summary := dto.NewStudioSummary(byID[item.ID])
		if item.DistanceKm != nil {
			d := roundKm(*item.DistanceKm)
			summary.DistanceKm = &d
		}
		hits = append(hits, summary)
	}

	return &dto.SearchStudiosResponse{
		PaginatedResponse: dto.NewPaginatedResponse(hits, int64(len(ranked)), page, pageSize),
		Center:            center,
	}, nil
}

func (s *StudioServiceImpl) searchCenter(ctx context.Context, req *dto.SearchStudiosRequest) (*dto.SearchCenter, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = DefaultSearchRadius
	}

	if req.Lat != nil && req.Lng != nil {
		return &dto.SearchCenter{Lat: *req.Lat, Lng: *req.Lng, RadiusKm: radius}, nil
	}
	if req.Lat != nil || req.Lng != nil {
		return nil, apperrors.ValidationError(map[string]string{"lat": "lat and lng must be given together"})
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, nil
	}
	result, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNotFound) && !errors.Is(err, geocoding.ErrNotConfigured) {
			logger.CtxWarn(ctx, "geocoding failed for search", "location", location, "error", err)
		}
		return nil, nil
	}
	return &dto.SearchCenter{
		Lat:      result.Point.Lat,
		Lng:      result.Point.Lng,
		RadiusKm: radius,
		Label:    result.FormattedAddress,
	}, nil
}

// Suggestions returns studio names first, then cities, for type-ahead.
func (s *StudioServiceImpl) Suggestions(ctx context.Context, db *gorm.DB, q string) ([]dto.Suggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinSuggestionLength {
		return []dto.Suggestion{}, nil
	}

	key := strings.ToLower(q)
	var cached []dto.Suggestion
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.CtxWarn(ctx, "suggestion cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	studios, err := s.studioRepo.SuggestNames(db, q, MaxSuggestions)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.Suggestion, 0, MaxSuggestions)
	for _, studio := range studios {
		out = append(out, dto.Suggestion{Type: "studio", Value: studio.Name, Username: studio.Username})
	}

	if remaining := MaxSuggestions - len(out); remaining > 0 {
		cities, err := s.studioRepo.SuggestCities(db, q, remaining)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, city := range cities {
			out = append(out, dto.Suggestion{Type: "location", Value: city})
		}
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		logger.CtxWarn(ctx, "suggestion cache write failed", "error", err)
	}
	return out, nil
}

// ==========================
// Owner
// ==========================

func (s *StudioServiceImpl) GetMine(db *gorm.DB, userID string) (*models.StudioProfile, error) {
	studio, err := s.studioRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return studio, nil
}

func (s *StudioServiceImpl) UpdateMine(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateStudioRequest) (*models.StudioProfile, error) {
	studio, err := s.studioRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	before := addressOf(studio)

	if req.Name != nil {
		studio.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		studio.Description = *req.Description
	}
	if req.StudioTypes != nil {
		studio.StudioTypes = models.NewStringList(upperUnique(req.StudioTypes))
	}
	if req.Equipment != nil {
		studio.Equipment = models.NewStringList(trimAll(req.Equipment))
	}
	if req.Services != nil {
		studio.Services = models.NewStringList(trimAll(req.Services))
	}
	if req.Address != nil {
		studio.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		studio.City = strings.TrimSpace(*req.City)
	}
	if req.Country != nil {
		studio.Country = strings.TrimSpace(*req.Country)
	}
	if req.Website != nil {
		studio.Website = strings.TrimSpace(*req.Website)
	}
	if req.Phone != nil {
		studio.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.RateText != nil {
		studio.RateText = strings.TrimSpace(*req.RateText)
	}
	if req.IsVisible != nil {
		studio.IsVisible = *req.IsVisible
	}

	if after := addressOf(studio); after != before && after != "" {
		result, err := s.geocoder.Geocode(ctx, after)
		if err != nil {
			logger.CtxWarn(ctx, "geocoding failed, keeping previous coordinates",
				"studio_id", studio.ID, "error", err)
		} else {
			lat, lng := result.Point.Lat, result.Point.Lng
			studio.Latitude = &lat
			studio.Longitude = &lng
		}
	}

	if err := s.studioRepo.Update(db, studio); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return studio, nil
}

func (s *StudioServiceImpl) UploadImage(ctx context.Context, db *gorm.DB, userID string, data []byte, altText string) (*models.StudioImage, error) {
	if len(data) > MaxImageBytes {
		return nil, apperrors.ErrFileTooLarge
	}
	if _, err := imageprocessor.DetectContentType(data); err != nil {
		return nil, apperrors.ErrInvalidFileType
	}

	studio, err := s.studioRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	count, err := s.imageRepo.CountByStudio(db, studio.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if count >= MaxImagesPerStudio {
		return nil, apperrors.ErrImageLimit
	}

	processed, err := s.processor.Prepare(data, imageprocessor.SizeLarge)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrUnsupportedFormat) {
			return nil, apperrors.ErrInvalidFileType
		}
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	key := fmt.Sprintf("studios/%s/%s", studio.ID, uuid.NewString())
	obj, err := s.storage.Save(ctx, key, bytes.NewReader(processed.Data), processed.ContentType)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "storage", "Failed to store image")
	}

	image := &models.StudioImage{
		StudioID:  studio.ID,
		URL:       obj.URL,
		PublicID:  obj.PublicID,
		AltText:   strings.TrimSpace(altText),
		SortOrder: int(count),
	}
	if err := s.imageRepo.Create(db, image); err != nil {
		if delErr := s.storage.Delete(ctx, obj.PublicID); delErr != nil {
			logger.CtxWarn(ctx, "failed to remove orphaned upload", "public_id", obj.PublicID, "error", delErr)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "studio image uploaded",
		"studio_id", studio.ID, "image_id", image.ID, "width", processed.Width, "height", processed.Height)
	return image, nil
}

func (s *StudioServiceImpl) DeleteImage(ctx context.Context, db *gorm.DB, userID, imageID string) error {
	studio, err := s.studioRepo.FindByUserID(db, userID)
	if err != nil {
		return handleRepoError(err)
	}
	image, err := s.imageRepo.FindByID(db, studio.ID, imageID)
	if err != nil {
		return handleRepoError(err)
	}

	if err := s.storage.Delete(ctx, image.PublicID); err != nil {
		return apperrors.ExternalServiceError(err, "storage", "Failed to delete image")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.imageRepo.Delete(tx, image.ID); err != nil {
		return handleRepoError(err)
	}
	remaining, err := s.imageRepo.ListByStudio(tx, studio.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	for i, img := range remaining {
		if img.SortOrder == i {
			continue
		}
		if err := s.imageRepo.UpdateSortOrder(tx, img.ID, i); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return tx.Commit().Error
}

// ReorderImages requires imageIDs to be a permutation of the studio's images.
func (s *StudioServiceImpl) ReorderImages(db *gorm.DB, userID string, imageIDs []string) ([]models.StudioImage, error) {
	studio, err := s.studioRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	current, err := s.imageRepo.ListByStudio(tx, studio.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !isPermutation(current, imageIDs) {
		return nil, apperrors.ValidationError(map[string]string{
			"image_ids": "must list every image of the studio exactly once",
		})
	}

	for i, id := range imageIDs {
		if err := s.imageRepo.UpdateSortOrder(tx, id, i); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	reordered, err := s.imageRepo.ListByStudio(tx, studio.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return reordered, nil
}

func isPermutation(images []models.StudioImage, ids []string) bool {
	if len(images) != len(ids) {
		return false
	}
	want := make(map[string]bool, len(images))
	for _, img := range images {
		want[img.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}

func addressOf(s *models.StudioProfile) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Address, s.City, s.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func upperUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func roundKm(d float64) float64 {
	return float64(int64(d*10+0.5)) / 10
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
