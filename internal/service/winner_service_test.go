package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

func newWinnerService(db *gorm.DB, notifier Notifier) WinnerService {
	leaderboard := newLeaderboardService(db, EngineOptions{})
	return NewWinnerService(
		repository.NewHackathonRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewRoundProgressRepository(db),
		repository.NewTeamRepository(db),
		leaderboard,
		notifier,
		newTestValidator(),
		zerolog.Nop(),
	)
}

// seedFinalists creates two final-round submissions: a returning actor with
// combined score 7.0 and a newcomer with combined score 4.5.
func seedFinalists(t *testing.T, db *gorm.DB, hackathon models.Hackathon) (models.Submission, models.Submission) {
	t.Helper()
	statementID := hackathon.ProblemStatements[0].ID

	history := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID, Title: "History",
	})
	returning := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, RoundIndex: 1, ParticipantID: 1, ProblemStatementID: statementID, Title: "Returning",
	})
	newcomer := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, RoundIndex: 1, ParticipantID: 2, ProblemStatementID: statementID, Title: "Newcomer",
	})

	createScore(t, db, models.Score{SubmissionID: history.ID, JudgeID: 10, HackathonID: hackathon.ID, Total: 6})
	createScore(t, db, models.Score{SubmissionID: returning.ID, JudgeID: 10, HackathonID: hackathon.ID, RoundIndex: 1, Total: 8})
	createScore(t, db, models.Score{SubmissionID: newcomer.ID, JudgeID: 10, HackathonID: hackathon.ID, RoundIndex: 1, Total: 9})

	return returning, newcomer
}

func TestResolveWinnersTopN(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	returning, newcomer := seedFinalists(t, db, hackathon)

	notifier := &recordingNotifier{}
	result, err := newWinnerService(db, notifier).Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode: SelectionModeTopN,
		TopN: intPointer(1),
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.RoundIndex)
	require.False(t, result.IsReassignment)
	require.Len(t, result.Winners, 1)

	winner := result.Winners[0]
	require.Equal(t, returning.ID, winner.SubmissionID)
	require.Equal(t, 7.0, winner.CombinedScore)
	require.Equal(t, 8.0, winner.CurrentRoundScore)
	require.NotNil(t, winner.PreviousRoundScore)
	require.Equal(t, 6.0, *winner.PreviousRoundScore)
	require.Equal(t, 1, winner.Rank)

	var stored models.Submission
	require.NoError(t, db.First(&stored, returning.ID).Error)
	require.Equal(t, models.SubmissionStatusWinner, stored.Status)

	// Recomputed scores are persisted for every finalist, not just winners.
	var runnerUp models.Submission
	require.NoError(t, db.First(&runnerUp, newcomer.ID).Error)
	require.Equal(t, models.SubmissionStatusSubmitted, runnerUp.Status)
	require.NotNil(t, runnerUp.CombinedScore)
	require.Equal(t, 4.5, *runnerUp.CombinedScore)
	require.NotNil(t, runnerUp.RoundScore)
	require.Equal(t, 9.0, *runnerUp.RoundScore)

	progress := loadProgress(t, db, hackathon.ID, 1)
	require.True(t, progress.RoundCompleted)
	require.Equal(t, []uint{returning.ID}, []uint(progress.ShortlistedSubmissionIDs))

	require.Contains(t, notifier.cleared, models.NotificationTypeWinnerAnnouncement)
	announcements := notifier.byType(models.NotificationTypeWinnerAnnouncement)
	require.Len(t, announcements, 1)
	require.Equal(t, uint(1), announcements[0].UserID)
}

func TestResolveReassignmentDisplacesPreviousWinner(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	returning, newcomer := seedFinalists(t, db, hackathon)

	svc := newWinnerService(db, &recordingNotifier{})

	_, err := svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode: SelectionModeTopN,
		TopN: intPointer(1),
	})
	require.NoError(t, err)

	result, err := svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode:          SelectionModeManual,
		SubmissionIDs: []uint{newcomer.ID},
	})
	require.NoError(t, err)
	require.True(t, result.IsReassignment)
	require.Equal(t, 1, result.Displaced)
	require.Len(t, result.Winners, 1)
	require.Equal(t, newcomer.ID, result.Winners[0].SubmissionID)

	var displaced models.Submission
	require.NoError(t, db.First(&displaced, returning.ID).Error)
	require.Equal(t, models.SubmissionStatusSubmitted, displaced.Status)

	var promoted models.Submission
	require.NoError(t, db.First(&promoted, newcomer.ID).Error)
	require.Equal(t, models.SubmissionStatusWinner, promoted.Status)
}

// rejectingSubmissionRepo fails the status write for one submission so the
// per-record failure path is observable.
type rejectingSubmissionRepo struct {
	repository.SubmissionRepository
	rejectID uint
}

func (r rejectingSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	if submission.ID == r.rejectID && submission.Status == models.SubmissionStatusWinner {
		return errors.New("update rejected")
	}
	return r.SubmissionRepository.Update(ctx, submission)
}

func TestResolveReportsFailedWinnerWrites(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	returning, newcomer := seedFinalists(t, db, hackathon)

	submissions := rejectingSubmissionRepo{
		SubmissionRepository: repository.NewSubmissionRepository(db),
		rejectID:             returning.ID,
	}
	leaderboard := newLeaderboardService(db, EngineOptions{})
	svc := NewWinnerService(
		repository.NewHackathonRepository(db),
		submissions,
		repository.NewRoundProgressRepository(db),
		repository.NewTeamRepository(db),
		leaderboard,
		&recordingNotifier{},
		newTestValidator(),
		zerolog.Nop(),
	)

	result, err := svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode: SelectionModeTopN,
		TopN: intPointer(2),
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.Failed)
	require.Equal(t, []uint{returning.ID}, result.FailedSubmissionIDs)
	require.Len(t, result.Winners, 1)
	require.Equal(t, newcomer.ID, result.Winners[0].SubmissionID)
}

func TestResolveManualValidatesBeforeMutation(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	returning, _ := seedFinalists(t, db, hackathon)

	svc := newWinnerService(db, &recordingNotifier{})

	_, err := svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode: SelectionModeTopN,
		TopN: intPointer(1),
	})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode:          SelectionModeManual,
		SubmissionIDs: []uint{999},
	})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	// The failed resolution never touched the standing winner.
	var stored models.Submission
	require.NoError(t, db.First(&stored, returning.ID).Error)
	require.Equal(t, models.SubmissionStatusWinner, stored.Status)
}

func TestResolveRejectsManualSelectionOutsideFinalRound(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	firstRound := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID,
	})

	_, err := newWinnerService(db, &recordingNotifier{}).Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{
		Mode:          SelectionModeManual,
		SubmissionIDs: []uint{firstRound.ID},
	})
	require.ErrorIs(t, err, ErrNotFinalRound)
}

func TestResolveRequiresModeParameter(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	svc := newWinnerService(db, &recordingNotifier{})

	_, err := svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{Mode: SelectionModeTopN})
	require.ErrorIs(t, err, ErrMissingModeParam)

	_, err = svc.Resolve(context.Background(), hackathon.ID, dto.WinnerResolveRequest{Mode: SelectionModeManual})
	require.ErrorIs(t, err, ErrMissingModeParam)
}
