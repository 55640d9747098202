package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

func newEligibilityService(db *gorm.DB, options EngineOptions) EligibilityService {
	return NewEligibilityService(
		repository.NewHackathonRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewRoundProgressRepository(db),
		options,
		zerolog.Nop(),
	)
}

func TestEligibilityFirstRoundIsOpenToEveryone(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)

	response, err := newEligibilityService(db, EngineOptions{}).Check(context.Background(), hackathon.ID, 0, 42)
	require.NoError(t, err)
	require.True(t, response.Eligible)
	require.True(t, response.RoundOpen)
	require.Equal(t, EligibilitySourceFirstRound, response.Source)
}

func TestEligibilityFromRoundProgress(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)

	require.NoError(t, db.Create(&models.RoundProgress{
		HackathonID:            hackathon.ID,
		RoundIndex:             0,
		ShortlistedTeamIDs:     datatypes.JSONSlice[uint]{7},
		EligibleParticipantIDs: datatypes.JSONSlice[uint]{50, 51},
		RoundCompleted:         true,
	}).Error)

	svc := newEligibilityService(db, EngineOptions{})

	response, err := svc.Check(context.Background(), hackathon.ID, 1, 7)
	require.NoError(t, err)
	require.True(t, response.Eligible)
	require.Equal(t, EligibilitySourceRoundProgress, response.Source)

	response, err = svc.Check(context.Background(), hackathon.ID, 1, 51)
	require.NoError(t, err)
	require.True(t, response.Eligible)

	response, err = svc.Check(context.Background(), hackathon.ID, 1, 99)
	require.NoError(t, err)
	require.False(t, response.Eligible)
	require.False(t, response.RoundOpen)
	require.Equal(t, EligibilitySourceNone, response.Source)
}

func TestEligibilityIgnoresUndecidedProgress(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)

	require.NoError(t, db.Create(&models.RoundProgress{
		HackathonID:        hackathon.ID,
		RoundIndex:         0,
		ShortlistedTeamIDs: datatypes.JSONSlice[uint]{7},
		RoundCompleted:     false,
	}).Error)

	response, err := newEligibilityService(db, EngineOptions{}).Check(context.Background(), hackathon.ID, 1, 7)
	require.NoError(t, err)
	require.False(t, response.Eligible)
}

func TestEligibilityLegacyShortlistFlag(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	// Older records carried the decision on the submission itself.
	createSubmission(t, db, models.Submission{
		HackathonID:         hackathon.ID,
		ParticipantID:       42,
		ProblemStatementID:  statementID,
		Status:              models.SubmissionStatusShortlisted,
		ShortlistedForRound: intPointer(2),
	})

	svc := newEligibilityService(db, EngineOptions{})

	response, err := svc.Check(context.Background(), hackathon.ID, 1, 42)
	require.NoError(t, err)
	require.True(t, response.Eligible)
	require.Equal(t, EligibilitySourceLegacyStatus, response.Source)

	response, err = svc.Check(context.Background(), hackathon.ID, 1, 43)
	require.NoError(t, err)
	require.False(t, response.Eligible)
}

func TestEligibilityLegacyFlagRequiresMatchingTargetRound(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	createSubmission(t, db, models.Submission{
		HackathonID:         hackathon.ID,
		ParticipantID:       42,
		ProblemStatementID:  statementID,
		Status:              models.SubmissionStatusShortlisted,
		ShortlistedForRound: intPointer(3),
	})

	response, err := newEligibilityService(db, EngineOptions{}).Check(context.Background(), hackathon.ID, 1, 42)
	require.NoError(t, err)
	require.False(t, response.Eligible)
}

func TestEligibilityRoundOpenRespectsWindow(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug: "windowed", Title: "Windowed", OrganizerID: 1,
		Rounds: []models.Round{
			{Index: 0, Name: "Open", Type: models.RoundTypePPT, StartsAt: now.Add(-time.Hour)},
			{Index: 1, Name: "Future", Type: models.RoundTypeBoth, StartsAt: now.Add(time.Hour)},
		},
	}
	require.NoError(t, db.Create(&hackathon).Error)

	require.NoError(t, db.Create(&models.RoundProgress{
		HackathonID:        hackathon.ID,
		RoundIndex:         0,
		ShortlistedTeamIDs: datatypes.JSONSlice[uint]{7},
		RoundCompleted:     true,
	}).Error)

	response, err := newEligibilityService(db, EngineOptions{}).Check(context.Background(), hackathon.ID, 1, 7)
	require.NoError(t, err)
	require.True(t, response.Eligible)
	require.False(t, response.RoundOpen)
}

func TestEligibilityCascadeDepth(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug: "cascade", Title: "Cascade", OrganizerID: 1,
		Rounds: []models.Round{
			{Index: 0, Name: "R1", Type: models.RoundTypePPT, StartsAt: now.Add(-time.Hour)},
			{Index: 1, Name: "R2", Type: models.RoundTypeBoth, StartsAt: now.Add(-time.Hour)},
			{Index: 2, Name: "R3", Type: models.RoundTypeBoth, StartsAt: now.Add(-time.Hour)},
		},
	}
	require.NoError(t, db.Create(&hackathon).Error)

	// Actor 7 advanced out of round 0 but not round 1.
	require.NoError(t, db.Create(&models.RoundProgress{
		HackathonID:        hackathon.ID,
		RoundIndex:         0,
		ShortlistedTeamIDs: datatypes.JSONSlice[uint]{7},
		RoundCompleted:     true,
	}).Error)
	require.NoError(t, db.Create(&models.RoundProgress{
		HackathonID:        hackathon.ID,
		RoundIndex:         1,
		ShortlistedTeamIDs: datatypes.JSONSlice[uint]{8},
		RoundCompleted:     true,
	}).Error)

	strict, err := newEligibilityService(db, EngineOptions{}).Check(context.Background(), hackathon.ID, 2, 7)
	require.NoError(t, err)
	require.False(t, strict.Eligible)

	relaxed, err := newEligibilityService(db, EngineOptions{EligibilityCascadeRounds: 2}).Check(context.Background(), hackathon.ID, 2, 7)
	require.NoError(t, err)
	require.True(t, relaxed.Eligible)
	require.Equal(t, EligibilitySourceRoundProgress, relaxed.Source)
}
