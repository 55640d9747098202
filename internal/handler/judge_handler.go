package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/service"
	"github.com/hackmate-io/hackmate-api/internal/utils"
)

// JudgeHandler wires judge-assignment routes nested under a hackathon.
type JudgeHandler struct {
	service service.JudgeService
	logger  zerolog.Logger
}

// NewJudgeHandler constructs the handler.
func NewJudgeHandler(service service.JudgeService, logger zerolog.Logger) *JudgeHandler {
	return &JudgeHandler{
		service: service,
		logger:  logger.With().Str("component", "judge_handler").Logger(),
	}
}

// Register attaches read endpoints to the router group.
func (h *JudgeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:judgeId/docket/:round", h.docket)
}

// RegisterOrganizer attaches organizer-only mutating endpoints.
func (h *JudgeHandler) RegisterOrganizer(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
}

func (h *JudgeHandler) list(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	judges, err := h.service.ListByHackathon(c.Context(), hackathonID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judges retrieved", judges)
}

func (h *JudgeHandler) docket(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	judgeID, err := parseUintParam(c, "judgeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	round, err := parseIntParam(c, "round")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.Docket(c.Context(), hackathonID, judgeID, round)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "docket retrieved", submissions)
}

func (h *JudgeHandler) create(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.JudgeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	judge, err := h.service.Create(c.Context(), hackathonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "judge registered", judge)
}

func (h *JudgeHandler) update(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.JudgeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	judge, err := h.service.Update(c.Context(), hackathonID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge updated", judge)
}

func (h *JudgeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "hackathon not found")
	case errors.Is(err, service.ErrJudgeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "judge not found")
	case errors.Is(err, service.ErrInvalidRound):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round index")
	case errors.As(err, &validationErrors):
		return utils.SendValidationError(c, validationErrors)
	default:
		return h.internalError(c, err)
	}
}

func (h *JudgeHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
