package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/repository"
	"github.com/hackmate-io/hackmate-api/internal/service"
	"github.com/hackmate-io/hackmate-api/internal/utils"
)

// EvaluationHandler wires the round-progression engine: allocation,
// leaderboards, shortlisting, eligibility and winner resolution.
type EvaluationHandler struct {
	allocation  service.AllocationService
	leaderboard service.LeaderboardService
	shortlist   service.ShortlistService
	eligibility service.EligibilityService
	winners     service.WinnerService
	logger      zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(allocation service.AllocationService, leaderboard service.LeaderboardService, shortlist service.ShortlistService, eligibility service.EligibilityService, winners service.WinnerService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		allocation:  allocation,
		leaderboard: leaderboard,
		shortlist:   shortlist,
		eligibility: eligibility,
		winners:     winners,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches read endpoints to the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Get("/leaderboard/:round", h.getLeaderboard)
	router.Get("/eligibility/:round/:actorId", h.checkEligibility)
}

// RegisterOrganizer attaches the organizer-only engine operations.
func (h *EvaluationHandler) RegisterOrganizer(router fiber.Router) {
	router.Post("/allocate", h.allocate)
	router.Post("/shortlist", h.runShortlist)
	router.Post("/shortlist/toggle", h.toggleShortlist)
	router.Post("/winners", h.resolveWinners)
}

func (h *EvaluationHandler) allocate(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AllocationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.allocation.Allocate(c.Context(), hackathonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions allocated", result)
}

func (h *EvaluationHandler) getLeaderboard(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	round, err := parseIntParam(c, "round")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	leaderboard, err := h.leaderboard.Build(c.Context(), hackathonID, round)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "leaderboard built", leaderboard)
}

func (h *EvaluationHandler) runShortlist(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ShortlistRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.shortlist.Shortlist(c.Context(), hackathonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "shortlist applied", result)
}

func (h *EvaluationHandler) toggleShortlist(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ToggleShortlistRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.shortlist.Toggle(c.Context(), hackathonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "shortlist updated", submission)
}

func (h *EvaluationHandler) checkEligibility(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	round, err := parseIntParam(c, "round")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	actorID, err := parseUintParam(c, "actorId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.eligibility.Check(c.Context(), hackathonID, round, actorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "eligibility checked", status)
}

func (h *EvaluationHandler) resolveWinners(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WinnerResolveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.winners.Resolve(c.Context(), hackathonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "winners resolved", result)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var compatibility *service.CompatibilityError
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "hackathon not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrJudgeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "judge not found")
	case errors.Is(err, service.ErrInvalidRound):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round index")
	case errors.Is(err, service.ErrMissingModeParam):
		return utils.SendError(c, fiber.StatusBadRequest, "selection mode parameter missing")
	case errors.Is(err, service.ErrNotFinalRound):
		return utils.SendError(c, fiber.StatusBadRequest, "winners can only be resolved for the final round")
	case errors.As(err, &compatibility):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, compatibility.Error())
	case errors.Is(err, repository.ErrVersionConflict):
		return utils.SendError(c, fiber.StatusConflict, "concurrent update detected, retry the operation")
	case errors.As(err, &validationErrors):
		return utils.SendValidationError(c, validationErrors)
	default:
		return h.internalError(c, err)
	}
}

func (h *EvaluationHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
