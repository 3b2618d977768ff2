package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/shared"
)

type AdminHandler struct {
	marketSvc MarketServiceInterface
	mediaSvc  MediaServiceInterface
}

func NewAdminHandler(marketSvc MarketServiceInterface, mediaSvc MediaServiceInterface) *AdminHandler {
	return &AdminHandler{
		marketSvc: marketSvc,
		mediaSvc:  mediaSvc,
	}
}

// @Summary Create event
// @Description Create a prediction market event with its initial outcomes
// @Tags admin
// @Accept json
// @Produce json
// @Param X-CSRF-Token header string true "CSRF token"
// @Param eventRequest body dto.CreateEventRequest true "Event details"
// @Success 201 {object} shared.Response{data=dto.EventResponse}
// @Router /api/v1/admin/events [post]
func (h *AdminHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.marketSvc.CreateEvent(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Event created", resp)
}

// @Summary Update event
// @Description Partially update an event's metadata or status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param eventRequest body dto.UpdateEventRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.EventResponse}
// @Router /api/v1/admin/events/{id} [put]
func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.marketSvc.UpdateEvent(c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Event updated", resp)
}

// @Summary Delete event
// @Description Delete an event and its outcomes
// @Tags admin
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/events/{id} [delete]
func (h *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.marketSvc.DeleteEvent(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Event deleted", nil)
}

// @Summary Resolve event
// @Description Settle an event on its winning outcome
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param resolveRequest body dto.ResolveEventRequest true "Winning outcome"
// @Success 200 {object} shared.Response{data=dto.EventResponse}
// @Router /api/v1/admin/events/{id}/resolve [post]
func (h *AdminHandler) ResolveEvent(c *fiber.Ctx) error {
	var req dto.ResolveEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.marketSvc.ResolveEvent(c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Event resolved", resp)
}

// @Summary Add outcome
// @Description Add an outcome to an existing event
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param outcomeRequest body dto.CreateOutcomeRequest true "Outcome details"
// @Success 201 {object} shared.Response{data=dto.OutcomeResponse}
// @Router /api/v1/admin/events/{id}/outcomes [post]
func (h *AdminHandler) CreateOutcome(c *fiber.Ctx) error {
	var req dto.CreateOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.marketSvc.CreateOutcome(c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Outcome created", resp)
}

// @Summary Update outcome
// @Description Update an outcome's label or price
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Outcome ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param outcomeRequest body dto.UpdateOutcomeRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.OutcomeResponse}
// @Router /api/v1/admin/outcomes/{id} [put]
func (h *AdminHandler) UpdateOutcome(c *fiber.Ctx) error {
	var req dto.UpdateOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.marketSvc.UpdateOutcome(c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Outcome updated", resp)
}

// @Summary Delete outcome
// @Description Remove an outcome from an event
// @Tags admin
// @Produce json
// @Param id path string true "Outcome ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/outcomes/{id} [delete]
func (h *AdminHandler) DeleteOutcome(c *fiber.Ctx) error {
	if err := h.marketSvc.DeleteOutcome(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Outcome deleted", nil)
}

// @Summary Upload event banner
// @Description Upload a banner image for an event and attach its URL
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Event ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Param banner formData file true "Banner image (PNG, JPEG or WebP, max 5MB)"
// @Success 201 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/admin/events/{id}/banner [post]
func (h *AdminHandler) UploadEventBanner(c *fiber.Ctx) error {
	eventID := c.Params("id")

	file, err := c.FormFile("banner")
	if err != nil {
		return shared.NewBadRequestError(err, "Banner file is required")
	}

	resp, err := h.mediaSvc.UploadEventBanner(eventID, file)
	if err != nil {
		return err
	}

	if err := h.marketSvc.SetEventBanner(eventID, resp.URL); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Banner uploaded", resp)
}

// @Summary Delete media asset
// @Description Remove a media asset from storage and the database
// @Tags admin
// @Produce json
// @Param id path string true "Asset ID"
// @Param X-CSRF-Token header string true "CSRF token"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/media/{id} [delete]
func (h *AdminHandler) DeleteMediaAsset(c *fiber.Ctx) error {
	if err := h.mediaSvc.DeleteMediaAsset(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Media asset deleted", nil)
}
