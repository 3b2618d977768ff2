package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/model"
)

type AuthServiceInterface interface {
	Login(didToken, clientIP string) (*model.User, error)
	ToUserInfo(user *model.User) dto.UserInfo
}

type SessionServiceInterface interface {
	Load(c *fiber.Ctx) *model.Session
	Save(c *fiber.Ctx, session *model.Session) error
	Clear(c *fiber.Ctx)
	Login(session *model.Session, userID, email, role string) error
	Rotate(session *model.Session) error
	Logout(session *model.Session)
	Destroy(session *model.Session)
}

type MarketServiceInterface interface {
	ListEvents(req dto.ListEventsQuery) (*dto.EventListResponse, error)
	GetEvent(id string) (*dto.EventResponse, error)
	CreateEvent(req dto.CreateEventRequest) (*dto.EventResponse, error)
	UpdateEvent(id string, req dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(id string) error
	ResolveEvent(id string, req dto.ResolveEventRequest) (*dto.EventResponse, error)
	CreateOutcome(eventID string, req dto.CreateOutcomeRequest) (*dto.OutcomeResponse, error)
	UpdateOutcome(outcomeID string, req dto.UpdateOutcomeRequest) (*dto.OutcomeResponse, error)
	DeleteOutcome(outcomeID string) error
	PlacePosition(userID, eventID string, req dto.PlacePositionRequest) (*dto.PositionResponse, error)
	GetUserPositions(userID string) ([]dto.PositionResponse, error)
	SetEventBanner(eventID, url string) error
}

type MediaServiceInterface interface {
	UploadEventBanner(eventID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
	DeleteMediaAsset(assetID string) error
}
