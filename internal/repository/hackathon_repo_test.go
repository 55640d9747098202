package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

func TestGetByIDReturnsRoundsInOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewHackathonRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug:  "order-check",
		Title: "Order Check",
		Rounds: []models.Round{
			{Index: 2, Name: "Finals", Type: models.RoundTypeBoth, StartsAt: now},
			{Index: 0, Name: "Ideation", Type: models.RoundTypePPT, StartsAt: now},
			{Index: 1, Name: "Build", Type: models.RoundTypeProject, StartsAt: now},
		},
	}
	require.NoError(t, repo.Create(ctx, &hackathon))

	stored, err := repo.GetByID(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Len(t, stored.Rounds, 3)
	for i, round := range stored.Rounds {
		require.Equal(t, i, round.Index)
	}
	require.Equal(t, 2, stored.FinalRoundIndex())
}
