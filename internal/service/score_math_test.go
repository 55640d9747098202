package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

func TestJudgeValueFlatScore(t *testing.T) {
	score := models.Score{Total: 7.5}
	require.Equal(t, 7.5, judgeValue(score, false))
	require.Equal(t, 7.5, judgeValue(score, true))
}

func TestJudgeValueCriteriaMean(t *testing.T) {
	score := models.Score{
		Criteria: datatypes.NewJSONSlice([]models.CriterionScore{
			{Name: "innovation", Score: 8, MaxScore: 10, Weight: 3},
			{Name: "execution", Score: 6, MaxScore: 10, Weight: 1},
		}),
	}

	// Weights are ignored unless the weighted switch is on.
	require.Equal(t, 7.0, judgeValue(score, false))
	require.Equal(t, 7.5, judgeValue(score, true))
}

func TestJudgeValueWeightedDefaultsZeroWeightToOne(t *testing.T) {
	score := models.Score{
		Criteria: datatypes.NewJSONSlice([]models.CriterionScore{
			{Name: "innovation", Score: 9, Weight: 0},
			{Name: "execution", Score: 5, Weight: 0},
		}),
	}
	require.Equal(t, 7.0, judgeValue(score, true))
}

func TestAggregateScoresEmpty(t *testing.T) {
	aggregate := aggregateScores(nil, false)
	require.Equal(t, 0.0, aggregate.Average)
	require.Equal(t, 0, aggregate.Count)
	require.False(t, aggregate.evaluated())
}

func TestAggregateScoresRoundsToOneDecimal(t *testing.T) {
	scores := []models.Score{
		{Total: 7.0},
		{Total: 8.0},
		{Total: 8.5},
	}
	aggregate := aggregateScores(scores, false)
	require.Equal(t, 7.8, aggregate.Average)
	require.Equal(t, 3, aggregate.Count)
	require.True(t, aggregate.evaluated())
}

func TestCombineScores(t *testing.T) {
	require.Equal(t, 7.0, combineScores(6.0, 8.0))
	require.Equal(t, 3.8, combineScores(0.0, 7.5))
	require.Equal(t, 8.3, combineScores(8.0, 8.5))
}

func TestGroupScoresBySubmission(t *testing.T) {
	scores := []models.Score{
		{SubmissionID: 1, JudgeID: 10},
		{SubmissionID: 2, JudgeID: 10},
		{SubmissionID: 1, JudgeID: 11},
	}
	grouped := groupScoresBySubmission(scores)
	require.Len(t, grouped, 2)
	require.Len(t, grouped[1], 2)
	require.Len(t, grouped[2], 1)
}

func TestRoundIsOpenWindow(t *testing.T) {
	now := time.Now().UTC()
	end := now.Add(time.Hour)
	round := models.Round{StartsAt: now.Add(-time.Hour), EndsAt: &end}

	require.True(t, round.IsOpen(now))
	require.False(t, round.IsOpen(now.Add(-2*time.Hour)))
	require.False(t, round.IsOpen(now.Add(2*time.Hour)))

	openEnded := models.Round{StartsAt: now.Add(-time.Hour)}
	require.True(t, openEnded.IsOpen(now.Add(240*time.Hour)))
}
