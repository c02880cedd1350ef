package dto

import (
	"time"

	"studiofinder_backend/internal/models"
)

// UpdateStudioRequest is a partial update; nil fields are left unchanged.
type UpdateStudioRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	StudioTypes []string `json:"studio_types" validate:"omitempty,max=6,dive,is-studio-type"`
	Equipment   []string `json:"equipment" validate:"omitempty,max=50,dive,max=100"`
	Services    []string `json:"services" validate:"omitempty,max=50,dive,max=100"`
	Address     *string  `json:"address" validate:"omitempty,max=300"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	Country     *string  `json:"country" validate:"omitempty,max=100"`
	Website     *string  `json:"website" validate:"omitempty,url,max=300"`
	Phone       *string  `json:"phone" validate:"omitempty,max=40"`
	RateText    *string  `json:"rate_text" validate:"omitempty,max=200"`
	IsVisible   *bool    `json:"is_visible"`
}

type ReorderImagesRequest struct {
	ImageIDs []string `json:"image_ids" validate:"required,min=1,dive,required"`
}

// SearchStudiosRequest is bound from the query string.
type SearchStudiosRequest struct {
	Query      string   `form:"q" json:"q" validate:"max=100"`
	StudioType string   `form:"studio_type" json:"studio_type" validate:"omitempty,is-studio-type"`
	City       string   `form:"city" json:"city" validate:"max=100"`
	Location   string   `form:"location" json:"location" validate:"max=200"`
	Lat        *float64 `form:"lat" json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng        *float64 `form:"lng" json:"lng" validate:"omitempty,min=-180,max=180"`
	RadiusKm   float64  `form:"radius_km" json:"radius_km" validate:"omitempty,gt=0,max=500"`
	Page       int      `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize   int      `form:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}

// StudioSummary is a search hit.
type StudioSummary struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StudioTypes []string   `json:"studio_types"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	IsFeatured  bool       `json:"is_featured"`
	IsVerified  bool       `json:"is_verified"`
	CoverImage  string     `json:"cover_image,omitempty"`
	DistanceKm  *float64   `json:"distance_km,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RateText    string     `json:"rate_text,omitempty"`
	Featured    *time.Time `json:"featured_until,omitempty"`
}

type SearchStudiosResponse struct {
	*PaginatedResponse
	Center *SearchCenter `json:"center,omitempty"`
}

type SearchCenter struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
	Label    string  `json:"label,omitempty"`
}

type Suggestion struct {
	Type     string `json:"type"` // studio | location
	Value    string `json:"value"`
	Username string `json:"username,omitempty"`
}

func NewStudioSummary(s *models.StudioProfile) StudioSummary {
	out := StudioSummary{
		ID:          s.ID,
		Username:    s.Username,
		Name:        s.Name,
		Description: s.Description,
		StudioTypes: models.StringList(s.StudioTypes),
		City:        s.City,
		Country:     s.Country,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		IsFeatured:  s.IsFeatured,
		IsVerified:  s.IsVerified,
		UpdatedAt:   s.UpdatedAt,
		RateText:    s.RateText,
		Featured:    s.FeaturedUntil,
	}
	if len(s.Images) > 0 {
		out.CoverImage = s.Images[0].URL
	}
	return out
}
