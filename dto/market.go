package dto

import "time"

// ==================== MARKET REQUEST DTOs ====================

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=8,max=200" example:"Will BTC close above $100k on Dec 31?"`
	Slug        string    `json:"slug" validate:"required,min=3,max=120" example:"btc-100k-dec-31"`
	Description string    `json:"description" validate:"max=5000"`
	Category    string    `json:"category" validate:"required,oneof=crypto politics sports other" example:"crypto"`
	ClosesAt    time.Time `json:"closes_at" validate:"required"`
	Outcomes    []CreateOutcomeRequest `json:"outcomes" validate:"required,min=2,dive"`
}

func (r CreateEventRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=8,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,oneof=crypto politics sports other"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=open closed resolved"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
}

func (r UpdateEventRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CreateOutcomeRequest struct {
	Label    string `json:"label" validate:"required,min=1,max=80" example:"Yes"`
	PriceBps int    `json:"price_bps" validate:"gte=0,lte=10000" example:"6300"`
}

func (r CreateOutcomeRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateOutcomeRequest struct {
	Label    *string `json:"label,omitempty" validate:"omitempty,min=1,max=80"`
	PriceBps *int    `json:"price_bps,omitempty" validate:"omitempty,gte=0,lte=10000"`
}

func (r UpdateOutcomeRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ResolveEventRequest struct {
	OutcomeID string `json:"outcome_id" validate:"required"`
}

func (r ResolveEventRequest) Validate() error {
	return GetValidator().Struct(r)
}

type PlacePositionRequest struct {
	OutcomeID string `json:"outcome_id" validate:"required"`
	Side      string `json:"side" validate:"required,oneof=buy sell" example:"buy"`
	Shares    int64  `json:"shares" validate:"required,gt=0" example:"100"`
}

func (r PlacePositionRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ListEventsQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=crypto politics sports other"`
	Status   string `query:"status" validate:"omitempty,oneof=open closed resolved"`
	Search   string `query:"search" validate:"omitempty,max=120"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (r ListEventsQuery) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== MARKET RESPONSE DTOs ====================

type OutcomeResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	PriceBps int    `json:"price_bps"`
}

type EventResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Slug              string            `json:"slug"`
	Description       string            `json:"description,omitempty"`
	Category          string            `json:"category"`
	Status            string            `json:"status"`
	BannerURL         string            `json:"banner_url,omitempty"`
	ClosesAt          time.Time         `json:"closes_at"`
	ResolvedOutcomeID string            `json:"resolved_outcome_id,omitempty"`
	Outcomes          []OutcomeResponse `json:"outcomes"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type PositionResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	OutcomeID string    `json:"outcome_id"`
	Side      string    `json:"side"`
	Shares    int64     `json:"shares"`
	PriceBps  int       `json:"price_bps"`
	CreatedAt time.Time `json:"created_at"`
}
