package service

import (
	"math"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// scoreAggregate is the collapsed view of all judge scores for one
// submission. A zero Count means "not evaluated", which is distinct from a
// true zero average.
type scoreAggregate struct {
	Average float64
	Count   int
}

func (a scoreAggregate) evaluated() bool {
	return a.Count > 0
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// judgeValue collapses one judge's score record into a single number. Scores
// with per-criterion entries use the mean of the raw criterion scores;
// criterion weights are only applied when the weighted switch is on (the
// schema carries weights, but ranking historically ignores them). Flat
// records fall back to the precomputed total.
func judgeValue(score models.Score, weighted bool) float64 {
	if !score.HasCriteria() {
		return score.Total
	}

	if weighted {
		var sum, weightSum float64
		for _, criterion := range score.Criteria {
			weight := criterion.Weight
			if weight <= 0 {
				weight = 1
			}
			sum += criterion.Score * weight
			weightSum += weight
		}
		if weightSum == 0 {
			return 0
		}
		return sum / weightSum
	}

	var sum float64
	for _, criterion := range score.Criteria {
		sum += criterion.Score
	}
	return sum / float64(len(score.Criteria))
}

// aggregateScores averages all judges' values for one submission, rounded
// to one decimal.
func aggregateScores(scores []models.Score, weighted bool) scoreAggregate {
	if len(scores) == 0 {
		return scoreAggregate{}
	}

	var sum float64
	for _, score := range scores {
		sum += judgeValue(score, weighted)
	}

	return scoreAggregate{
		Average: round1(sum / float64(len(scores))),
		Count:   len(scores),
	}
}

// combineScores averages a previous-round score with the current one for
// final-round ranking.
func combineScores(previous, current float64) float64 {
	return round1((previous + current) / 2)
}

// groupScoresBySubmission indexes score records by submission id.
func groupScoresBySubmission(scores []models.Score) map[uint][]models.Score {
	grouped := make(map[uint][]models.Score, len(scores))
	for _, score := range scores {
		grouped[score.SubmissionID] = append(grouped[score.SubmissionID], score)
	}
	return grouped
}
