package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

func TestRoundProgressUpsertReplacesDecision(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoundProgressRepository(db)
	ctx := context.Background()

	first := models.RoundProgress{
		HackathonID:              1,
		RoundIndex:               0,
		ShortlistedSubmissionIDs: datatypes.JSONSlice[uint]{1, 2},
		RoundCompleted:           true,
	}
	require.NoError(t, repo.Upsert(ctx, &first))
	require.Equal(t, 0, first.Version)

	second := models.RoundProgress{
		HackathonID:              1,
		RoundIndex:               0,
		ShortlistedSubmissionIDs: datatypes.JSONSlice[uint]{3},
		ShortlistedTeamIDs:       datatypes.JSONSlice[uint]{9},
		RoundCompleted:           true,
	}
	require.NoError(t, repo.Upsert(ctx, &second))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, second.Version)

	stored, err := repo.GetByRound(ctx, 1, 0)
	require.NoError(t, err)
	require.Equal(t, []uint{3}, []uint(stored.ShortlistedSubmissionIDs))
	require.Equal(t, []uint{9}, []uint(stored.ShortlistedTeamIDs))

	var count int64
	require.NoError(t, db.Model(&models.RoundProgress{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRoundProgressListOrdersByRound(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoundProgressRepository(db)
	ctx := context.Background()

	for _, index := range []int{2, 0, 1} {
		progress := models.RoundProgress{HackathonID: 1, RoundIndex: index, RoundCompleted: true}
		require.NoError(t, repo.Upsert(ctx, &progress))
	}
	require.NoError(t, repo.Upsert(ctx, &models.RoundProgress{HackathonID: 2, RoundIndex: 0}))

	records, err := repo.ListByHackathon(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, 0, records[0].RoundIndex)
	require.Equal(t, 2, records[2].RoundIndex)
}
