package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/service"
	"github.com/hackmate-io/hackmate-api/internal/utils"
)

// HackathonHandler wires hackathon configuration routes.
type HackathonHandler struct {
	service service.HackathonService
	logger  zerolog.Logger
}

// NewHackathonHandler constructs the handler.
func NewHackathonHandler(service service.HackathonService, logger zerolog.Logger) *HackathonHandler {
	return &HackathonHandler{
		service: service,
		logger:  logger.With().Str("component", "hackathon_handler").Logger(),
	}
}

// Register attaches hackathon endpoints to the router group.
func (h *HackathonHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/slug/:slug", h.getBySlug)
}

// RegisterOrganizer attaches organizer-only mutating endpoints.
func (h *HackathonHandler) RegisterOrganizer(router fiber.Router) {
	router.Post("", h.create)
}

func (h *HackathonHandler) list(c *fiber.Ctx) error {
	hackathons, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "hackathons retrieved", hackathons)
}

func (h *HackathonHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	hackathon, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "hackathon retrieved", hackathon)
}

func (h *HackathonHandler) getBySlug(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid slug")
	}

	hackathon, err := h.service.GetBySlug(c.Context(), slug)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "hackathon retrieved", hackathon)
}

func (h *HackathonHandler) create(c *fiber.Ctx) error {
	var payload dto.HackathonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	hackathon, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "hackathon created", hackathon)
}

func (h *HackathonHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "hackathon not found")
	case errors.Is(err, service.ErrInvalidRound):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round configuration")
	case errors.As(err, &validationErrors):
		return utils.SendValidationError(c, validationErrors)
	default:
		return h.internalError(c, err)
	}
}

func (h *HackathonHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
