package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

func newScoreService(db *gorm.DB) ScoreService {
	return NewScoreService(
		repository.NewScoreRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewJudgeRepository(db),
		repository.NewHackathonRepository(db),
		newTestValidator(),
		zerolog.Nop(),
	)
}

func assignToJudge(t *testing.T, db *gorm.DB, judge models.JudgeAssignment, roundIndex int, submissionIDs ...uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.RoundAssignment{
		JudgeAssignmentID: judge.ID,
		RoundIndex:        roundIndex,
		SubmissionIDs:     datatypes.JSONSlice[uint](submissionIDs),
	}).Error)
}

func TestSubmitFlatScoreAndUpsert(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	submission := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID,
	})
	judge := createJudge(t, db, models.JudgeAssignment{HackathonID: hackathon.ID, JudgeID: 100})
	assignToJudge(t, db, judge, 0, submission.ID)

	svc := newScoreService(db)

	response, err := svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Total:        floatPointer(7.5),
	})
	require.NoError(t, err)
	require.Equal(t, 7.5, response.Total)

	// A resubmission replaces the previous evaluation instead of stacking.
	response, err = svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Total:        floatPointer(9),
	})
	require.NoError(t, err)
	require.Equal(t, 9.0, response.Total)

	var count int64
	require.NoError(t, db.Model(&models.Score{}).
		Where("submission_id = ? AND judge_id = ?", submission.ID, 100).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmitCriteriaNormalizedAgainstRoundDefinition(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug: "criteria", Title: "Criteria", OrganizerID: 1,
		Rounds: []models.Round{{
			Index: 0, Name: "Judged", Type: models.RoundTypePPT, StartsAt: now.Add(-time.Hour),
			PresentationCriteria: datatypes.NewJSONSlice([]models.Criterion{
				{Name: "innovation", MaxScore: 20, Weight: 2},
				{Name: "execution", MaxScore: 10, Weight: 1},
			}),
		}},
		ProblemStatements: []models.ProblemStatement{
			{Statement: "PS", Type: models.ProblemStatementGeneral},
		},
	}
	require.NoError(t, db.Create(&hackathon).Error)

	submission := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: hackathon.ProblemStatements[0].ID,
	})
	judge := createJudge(t, db, models.JudgeAssignment{HackathonID: hackathon.ID, JudgeID: 100})
	assignToJudge(t, db, judge, 0, submission.ID)

	svc := newScoreService(db)

	// 15/20 and 6/10 normalize to 7.5 and 6.0 on the 10 scale.
	response, err := svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Criteria: []dto.CriterionScorePayload{
			{Name: "innovation", Score: 15},
			{Name: "execution", Score: 6},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 6.8, response.Total)
	require.Len(t, response.Criteria, 2)
	require.Equal(t, 20.0, response.Criteria[0].MaxScore)
	require.Equal(t, 2.0, response.Criteria[0].Weight)

	_, err = svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Criteria:     []dto.CriterionScorePayload{{Name: "execution", Score: 11}},
	})
	require.ErrorIs(t, err, ErrScoreExceedsMax)

	// Unknown criteria default to a maximum of 10.
	_, err = svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Criteria:     []dto.CriterionScorePayload{{Name: "vibes", Score: 12}},
	})
	require.ErrorIs(t, err, ErrScoreExceedsMax)
}

func TestSubmitRequiresAssignment(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	assigned := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID,
	})
	unassigned := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 2, ProblemStatementID: statementID,
	})
	judge := createJudge(t, db, models.JudgeAssignment{HackathonID: hackathon.ID, JudgeID: 100})
	assignToJudge(t, db, judge, 0, assigned.ID)

	_, err := newScoreService(db).Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: unassigned.ID,
		Kind:         models.SubmissionKindPresentation,
		Total:        floatPointer(8),
	})
	require.ErrorIs(t, err, ErrJudgeNotAssigned)
}

func TestSubmitJudgeGuards(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	submission := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID,
	})
	inactive := createJudge(t, db, models.JudgeAssignment{HackathonID: hackathon.ID, JudgeID: 100})
	require.NoError(t, db.Model(&models.JudgeAssignment{}).
		Where("id = ?", inactive.ID).
		Update("active", false).Error)

	svc := newScoreService(db)
	payload := dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Total:        floatPointer(8),
	}

	_, err := svc.Submit(context.Background(), hackathon.ID, 100, payload)
	require.ErrorIs(t, err, ErrJudgeInactive)

	_, err = svc.Submit(context.Background(), hackathon.ID, 999, payload)
	require.ErrorIs(t, err, ErrJudgeNotFound)
}

func TestSubmitRequiresCriteriaOrTotal(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)

	_, err := newScoreService(db).Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: 1,
		Kind:         models.SubmissionKindPresentation,
	})
	require.ErrorIs(t, err, ErrScoreShapeMissing)
}

func TestListByJudgeAndSubmission(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	submission := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID,
	})
	judge := createJudge(t, db, models.JudgeAssignment{HackathonID: hackathon.ID, JudgeID: 100})
	assignToJudge(t, db, judge, 0, submission.ID)

	svc := newScoreService(db)
	_, err := svc.Submit(context.Background(), hackathon.ID, 100, dto.ScoreSubmitRequest{
		SubmissionID: submission.ID,
		Kind:         models.SubmissionKindPresentation,
		Total:        floatPointer(8),
	})
	require.NoError(t, err)

	byJudge, err := svc.ListByJudge(context.Background(), hackathon.ID, 100)
	require.NoError(t, err)
	require.Len(t, byJudge, 1)

	bySubmission, err := svc.ListBySubmission(context.Background(), submission.ID, 0)
	require.NoError(t, err)
	require.Len(t, bySubmission, 1)
	require.Equal(t, 8.0, bySubmission[0].Total)
}
