package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

// MarketService owns event/outcome CRUD and position placement. Reads go
// through a short-lived Redis cache; every admin write invalidates it.
type MarketService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const MARKET_SVC = "market_svc"

const (
	eventListCacheTTL    = 30 * time.Second
	eventListCachePrefix = "events:list:"
	eventCachePrefix     = "events:id:"
)

func (svc MarketService) Id() string {
	return MARKET_SVC
}

func (svc *MarketService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *MarketService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== PUBLIC READS ====================

func (svc *MarketService) ListEvents(req dto.ListEventsQuery) (*dto.EventListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s:%d:%d",
		eventListCachePrefix, req.Category, req.Status, req.Search, req.Page, req.Limit)

	var cached dto.EventListResponse
	if hit, err := svc.redisSvc.GetJSON(context.Background(), cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	events, total, err := svc.sqlSvc.ListEvents(req)
	if err != nil {
		return nil, err
	}

	resp := &dto.EventListResponse{
		Events: make([]dto.EventResponse, 0, len(events)),
		Total:  total,
		Page:   req.Page,
		Limit:  req.Limit,
	}
	for i := range events {
		resp.Events = append(resp.Events, svc.toEventResponse(&events[i]))
	}

	if err := svc.redisSvc.Set(context.Background(), cacheKey, resp, eventListCacheTTL); err != nil {
		log.WithError(err).Warn("Failed to cache event list")
	}

	return resp, nil
}

func (svc *MarketService) GetEvent(id string) (*dto.EventResponse, error) {
	cacheKey := eventCachePrefix + id

	var cached dto.EventResponse
	if hit, err := svc.redisSvc.GetJSON(context.Background(), cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	event, err := svc.sqlSvc.GetEvent(id)
	if err != nil {
		return nil, err
	}

	resp := svc.toEventResponse(event)
	if err := svc.redisSvc.Set(context.Background(), cacheKey, resp, eventListCacheTTL); err != nil {
		log.WithError(err).Warn("Failed to cache event")
	}

	return &resp, nil
}

// ==================== ADMIN WRITES ====================

func (svc *MarketService) CreateEvent(req dto.CreateEventRequest) (*dto.EventResponse, error) {
	event := &model.Event{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Status:      shared.EventStatusOpen,
		ClosesAt:    req.ClosesAt,
	}
	for _, o := range req.Outcomes {
		event.Outcomes = append(event.Outcomes, model.Outcome{
			Label:    o.Label,
			PriceBps: o.PriceBps,
		})
	}

	created, err := svc.sqlSvc.CreateEvent(event)
	if err != nil {
		return nil, err
	}

	svc.invalidateCache(created.ID)
	resp := svc.toEventResponse(created)
	return &resp, nil
}

func (svc *MarketService) UpdateEvent(id string, req dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := svc.sqlSvc.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.ClosesAt != nil {
		event.ClosesAt = *req.ClosesAt
	}

	if err := svc.sqlSvc.UpdateEvent(event); err != nil {
		return nil, err
	}

	svc.invalidateCache(id)
	resp := svc.toEventResponse(event)
	return &resp, nil
}

func (svc *MarketService) DeleteEvent(id string) error {
	if _, err := svc.sqlSvc.GetEvent(id); err != nil {
		return err
	}

	if err := svc.sqlSvc.DeleteEvent(id); err != nil {
		return err
	}

	svc.invalidateCache(id)
	return nil
}

// ResolveEvent settles an event on the winning outcome. The winning
// outcome must belong to the event.
func (svc *MarketService) ResolveEvent(id string, req dto.ResolveEventRequest) (*dto.EventResponse, error) {
	event, err := svc.sqlSvc.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if event.Status == shared.EventStatusResolved {
		return nil, shared.NewConflictError(nil, "Event is already resolved")
	}

	found := false
	for _, o := range event.Outcomes {
		if o.ID == req.OutcomeID {
			found = true
			break
		}
	}
	if !found {
		return nil, shared.NewBadRequestError(nil, "Outcome does not belong to this event")
	}

	event.Status = shared.EventStatusResolved
	event.ResolvedOutcomeID = req.OutcomeID

	if err := svc.sqlSvc.UpdateEvent(event); err != nil {
		return nil, err
	}

	svc.invalidateCache(id)
	resp := svc.toEventResponse(event)
	return &resp, nil
}

func (svc *MarketService) CreateOutcome(eventID string, req dto.CreateOutcomeRequest) (*dto.OutcomeResponse, error) {
	if _, err := svc.sqlSvc.GetEvent(eventID); err != nil {
		return nil, err
	}

	outcome, err := svc.sqlSvc.CreateOutcome(&model.Outcome{
		EventID:  eventID,
		Label:    req.Label,
		PriceBps: req.PriceBps,
	})
	if err != nil {
		return nil, err
	}

	svc.invalidateCache(eventID)
	return &dto.OutcomeResponse{ID: outcome.ID, Label: outcome.Label, PriceBps: outcome.PriceBps}, nil
}

func (svc *MarketService) UpdateOutcome(outcomeID string, req dto.UpdateOutcomeRequest) (*dto.OutcomeResponse, error) {
	outcome, err := svc.sqlSvc.GetOutcome(outcomeID)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		outcome.Label = *req.Label
	}
	if req.PriceBps != nil {
		outcome.PriceBps = *req.PriceBps
	}

	if err := svc.sqlSvc.UpdateOutcome(outcome); err != nil {
		return nil, err
	}

	svc.invalidateCache(outcome.EventID)
	return &dto.OutcomeResponse{ID: outcome.ID, Label: outcome.Label, PriceBps: outcome.PriceBps}, nil
}

func (svc *MarketService) DeleteOutcome(outcomeID string) error {
	outcome, err := svc.sqlSvc.GetOutcome(outcomeID)
	if err != nil {
		return err
	}

	if err := svc.sqlSvc.DeleteOutcome(outcomeID); err != nil {
		return err
	}

	svc.invalidateCache(outcome.EventID)
	return nil
}

// ==================== TRADING ====================

// PlacePosition records a position against an open event at the
// outcome's current price.
func (svc *MarketService) PlacePosition(userID, eventID string, req dto.PlacePositionRequest) (*dto.PositionResponse, error) {
	event, err := svc.sqlSvc.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if event.Status != shared.EventStatusOpen {
		return nil, shared.NewConflictError(nil, "Market is not open for trading")
	}
	if time.Now().After(event.ClosesAt) {
		return nil, shared.NewConflictError(nil, "Market has closed")
	}

	var outcome *model.Outcome
	for i := range event.Outcomes {
		if event.Outcomes[i].ID == req.OutcomeID {
			outcome = &event.Outcomes[i]
			break
		}
	}
	if outcome == nil {
		return nil, shared.NewBadRequestError(nil, "Outcome does not belong to this event")
	}

	position, err := svc.sqlSvc.CreatePosition(&model.Position{
		UserID:    userID,
		EventID:   eventID,
		OutcomeID: outcome.ID,
		Side:      req.Side,
		Shares:    req.Shares,
		PriceBps:  outcome.PriceBps,
	})
	if err != nil {
		return nil, err
	}

	return &dto.PositionResponse{
		ID:        position.ID,
		EventID:   position.EventID,
		OutcomeID: position.OutcomeID,
		Side:      position.Side,
		Shares:    position.Shares,
		PriceBps:  position.PriceBps,
		CreatedAt: position.CreatedAt,
	}, nil
}

func (svc *MarketService) GetUserPositions(userID string) ([]dto.PositionResponse, error) {
	positions, err := svc.sqlSvc.GetUserPositions(userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.PositionResponse, 0, len(positions))
	for _, p := range positions {
		resp = append(resp, dto.PositionResponse{
			ID:        p.ID,
			EventID:   p.EventID,
			OutcomeID: p.OutcomeID,
			Side:      p.Side,
			Shares:    p.Shares,
			PriceBps:  p.PriceBps,
			CreatedAt: p.CreatedAt,
		})
	}
	return resp, nil
}

// ==================== HELPERS ====================

func (svc *MarketService) SetEventBanner(eventID, url string) error {
	event, err := svc.sqlSvc.GetEvent(eventID)
	if err != nil {
		return err
	}

	event.BannerURL = url
	if err := svc.sqlSvc.UpdateEvent(event); err != nil {
		return err
	}

	svc.invalidateCache(eventID)
	return nil
}

func (svc *MarketService) invalidateCache(eventID string) {
	ctx := context.Background()
	if err := svc.redisSvc.DeleteByPattern(ctx, eventListCachePrefix+"*"); err != nil {
		log.WithError(err).Warn("Failed to invalidate event list cache")
	}
	if eventID != "" {
		if err := svc.redisSvc.Delete(ctx, eventCachePrefix+eventID); err != nil {
			log.WithError(err).Warn("Failed to invalidate event cache")
		}
	}
}

func (svc *MarketService) toEventResponse(event *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                event.ID,
		Title:             event.Title,
		Slug:              event.Slug,
		Description:       event.Description,
		Category:          event.Category,
		Status:            event.Status,
		BannerURL:         event.BannerURL,
		ClosesAt:          event.ClosesAt,
		ResolvedOutcomeID: event.ResolvedOutcomeID,
		Outcomes:          make([]dto.OutcomeResponse, 0, len(event.Outcomes)),
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
	}
	for _, o := range event.Outcomes {
		resp.Outcomes = append(resp.Outcomes, dto.OutcomeResponse{
			ID:       o.ID,
			Label:    o.Label,
			PriceBps: o.PriceBps,
		})
	}
	return resp
}
