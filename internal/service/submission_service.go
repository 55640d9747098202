package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

var allowedPresentationTypes = []string{
	"application/pdf",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// SubmissionService orchestrates submission intake and retrieval. Intake
// enforces round eligibility, the submission window and the one-entry-per-
// actor-per-round rule before anything is stored.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	hackathons  repository.HackathonRepository
	eligibility EligibilityService
	uploader    FileUploader
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, hackathons repository.HackathonRepository, eligibility EligibilityService, uploader FileUploader, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		hackathons:  hackathons,
		eligibility: eligibility,
		uploader:    uploader,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	hackathon, err := s.hackathons.GetByID(ctx, payload.HackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrHackathonNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if _, ok := hackathon.RoundAt(payload.RoundIndex); !ok {
		return dto.SubmissionResponse{}, ErrInvalidRound
	}
	if !s.statementBelongs(hackathon, payload.ProblemStatementID) {
		return dto.SubmissionResponse{}, ErrProblemStatementNotFound
	}

	actorID := payload.ParticipantID
	if payload.TeamID != nil {
		actorID = *payload.TeamID
	}

	check, err := s.eligibility.Check(ctx, payload.HackathonID, payload.RoundIndex, actorID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !check.Eligible {
		return dto.SubmissionResponse{}, ErrNotEligible
	}
	if !check.RoundOpen {
		return dto.SubmissionResponse{}, ErrRoundClosed
	}

	_, err = s.submissions.GetByActorAndRound(ctx, payload.HackathonID, payload.RoundIndex, payload.TeamID, payload.ParticipantID)
	if err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	assetURL := ""
	if payload.Kind == models.SubmissionKindPresentation {
		assetURL, err = s.uploadPresentation(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	submission := models.Submission{
		HackathonID:        payload.HackathonID,
		RoundIndex:         payload.RoundIndex,
		TeamID:             payload.TeamID,
		ParticipantID:      payload.ParticipantID,
		ProblemStatementID: payload.ProblemStatementID,
		Kind:               payload.Kind,
		Title:              payload.Title,
		AssetURL:           assetURL,
		RepoURL:            payload.RepoURL,
		Status:             models.SubmissionStatusSubmitted,
		SubmittedAt:        s.now(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("hackathon_id", created.HackathonID).
		Int("round_index", created.RoundIndex).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		HackathonID:   filter.HackathonID,
		RoundIndex:    filter.RoundIndex,
		TeamID:        filter.TeamID,
		ParticipantID: filter.ParticipantID,
		Status:        filter.Status,
		Kind:          filter.Kind,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) statementBelongs(hackathon models.Hackathon, statementID uint) bool {
	for _, statement := range hackathon.ProblemStatements {
		if statement.ID == statementID {
			return true
		}
	}
	return false
}

func (s *submissionService) uploadPresentation(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("presentation file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := false
	for _, accepted := range allowedPresentationTypes {
		if detected.Is(accepted) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("unsupported presentation type %s", detected.String())
	}

	if _, err := reader.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	url, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload presentation: %w", err)
	}
	return url, nil
}
