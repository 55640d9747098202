package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/service"
	"github.com/hackmate-io/hackmate-api/internal/utils"
)

// SubmissionHandler wires submission intake and listing routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

// create accepts multipart form data so presentation submissions can carry
// their deck alongside the metadata fields.
func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	payload, err := h.parseCreatePayload(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	submission, err := h.service.Create(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) parseCreatePayload(c *fiber.Ctx) (dto.SubmissionCreateRequest, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var payload dto.SubmissionCreateRequest
		if err := c.BodyParser(&payload); err != nil {
			return dto.SubmissionCreateRequest{}, errors.New("invalid request body")
		}
		return payload, nil
	}

	payload := dto.SubmissionCreateRequest{
		Kind:    c.FormValue("kind"),
		Title:   c.FormValue("title"),
		RepoURL: c.FormValue("repo_url"),
	}

	hackathonID, err := strconv.ParseUint(c.FormValue("hackathon_id"), 10, 64)
	if err != nil {
		return dto.SubmissionCreateRequest{}, errors.New("invalid hackathon_id")
	}
	payload.HackathonID = uint(hackathonID)

	if raw := c.FormValue("round_index"); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil || round < 0 {
			return dto.SubmissionCreateRequest{}, errors.New("invalid round_index")
		}
		payload.RoundIndex = round
	}

	participantID, err := strconv.ParseUint(c.FormValue("participant_id"), 10, 64)
	if err != nil {
		return dto.SubmissionCreateRequest{}, errors.New("invalid participant_id")
	}
	payload.ParticipantID = uint(participantID)

	statementID, err := strconv.ParseUint(c.FormValue("problem_statement_id"), 10, 64)
	if err != nil {
		return dto.SubmissionCreateRequest{}, errors.New("invalid problem_statement_id")
	}
	payload.ProblemStatementID = uint(statementID)

	if raw := c.FormValue("team_id"); raw != "" {
		teamID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return dto.SubmissionCreateRequest{}, errors.New("invalid team_id")
		}
		id := uint(teamID)
		payload.TeamID = &id
	}

	return payload, nil
}

func (h *SubmissionHandler) parseFilter(c *fiber.Ctx) (dto.SubmissionFilter, error) {
	filter := dto.SubmissionFilter{}

	hackathonID, err := parseQueryUint(c, "hackathon_id")
	if err != nil {
		return filter, err
	}
	filter.HackathonID = hackathonID

	teamID, err := parseQueryUint(c, "team_id")
	if err != nil {
		return filter, err
	}
	filter.TeamID = teamID

	participantID, err := parseQueryUint(c, "participant_id")
	if err != nil {
		return filter, err
	}
	filter.ParticipantID = participantID

	if raw := strings.TrimSpace(c.Query("round_index")); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil || round < 0 {
			return filter, errors.New("invalid round_index")
		}
		filter.RoundIndex = &round
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}
	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		filter.Kind = &kind
	}

	return filter, nil
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "hackathon not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrProblemStatementNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem statement not found")
	case errors.Is(err, service.ErrInvalidRound):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round index")
	case errors.Is(err, service.ErrNotEligible):
		return utils.SendError(c, fiber.StatusForbidden, "not eligible for this round")
	case errors.Is(err, service.ErrRoundClosed):
		return utils.SendError(c, fiber.StatusConflict, "round is not accepting submissions")
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "submission already exists for this round")
	case errors.As(err, &validationErrors):
		return utils.SendValidationError(c, validationErrors)
	default:
		return h.internalError(c, err)
	}
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
