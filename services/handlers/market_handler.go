package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/shared"
)

type MarketHandler struct {
	marketSvc MarketServiceInterface
}

func NewMarketHandler(marketSvc MarketServiceInterface) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// @Summary List events
// @Description List prediction market events with optional category, status and search filters
// @Tags markets
// @Produce json
// @Param category query string false "Category filter"
// @Param status query string false "Status filter" Enums(open, closed, resolved)
// @Param search query string false "Title search"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} shared.Response{data=dto.EventListResponse}
// @Router /api/v1/markets [get]
func (h *MarketHandler) ListEvents(c *fiber.Ctx) error {
	var req dto.ListEventsQuery
	if err := c.QueryParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid query parameters")
	}

	resp, err := h.marketSvc.ListEvents(req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Get event
// @Description Fetch a single event with its outcomes
// @Tags markets
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} shared.Response{data=dto.EventResponse}
// @Router /api/v1/markets/{id} [get]
func (h *MarketHandler) GetEvent(c *fiber.Ctx) error {
	resp, err := h.marketSvc.GetEvent(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Place a position
// @Description Buy or sell shares in an outcome of an open event
// @Tags markets
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param positionRequest body dto.PlacePositionRequest true "Position details"
// @Success 201 {object} shared.Response{data=dto.PositionResponse}
// @Router /api/v1/markets/{id}/positions [post]
func (h *MarketHandler) PlacePosition(c *fiber.Ctx) error {
	var req dto.PlacePositionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	userID := c.Locals(shared.UserID).(string)

	resp, err := h.marketSvc.PlacePosition(userID, c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Position placed", resp)
}

// @Summary My positions
// @Description List the authenticated user's positions, newest first
// @Tags markets
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.PositionResponse}
// @Router /api/v1/positions [get]
func (h *MarketHandler) GetUserPositions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.marketSvc.GetUserPositions(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
