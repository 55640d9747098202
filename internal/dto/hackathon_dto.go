package dto

import (
	"time"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// CriterionPayload defines one judging criterion in requests and responses.
type CriterionPayload struct {
	Name     string  `json:"name" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0"`
}

// RoundPayload describes one round when creating a hackathon.
type RoundPayload struct {
	Name                 string             `json:"name" validate:"required"`
	Type                 string             `json:"type" validate:"required,oneof=ppt project both"`
	StartsAt             time.Time          `json:"starts_at" validate:"required"`
	EndsAt               *time.Time         `json:"ends_at"`
	PresentationCriteria []CriterionPayload `json:"presentation_criteria" validate:"dive"`
	ProjectCriteria      []CriterionPayload `json:"project_criteria" validate:"dive"`
}

// ProblemStatementPayload describes one challenge topic.
type ProblemStatementPayload struct {
	Statement string `json:"statement" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=general sponsored"`
	Sponsor   string `json:"sponsor" validate:"required_if=Type sponsored"`
}

// HackathonCreateRequest creates a hackathon with its rounds and statements.
type HackathonCreateRequest struct {
	Slug              string                    `json:"slug" validate:"required,min=3,max=128"`
	Title             string                    `json:"title" validate:"required,min=3,max=255"`
	Description       string                    `json:"description"`
	MultiJudge        bool                      `json:"multi_judge"`
	JudgesPerProject  int                       `json:"judges_per_project" validate:"omitempty,gte=1,lte=10"`
	Rounds            []RoundPayload            `json:"rounds" validate:"required,min=1,dive"`
	ProblemStatements []ProblemStatementPayload `json:"problem_statements" validate:"dive"`
}

// RoundResponse serializes a round.
type RoundResponse struct {
	Index                int                `json:"index"`
	Name                 string             `json:"name"`
	Type                 string             `json:"type"`
	StartsAt             time.Time          `json:"starts_at"`
	EndsAt               *time.Time         `json:"ends_at"`
	PresentationCriteria []CriterionPayload `json:"presentation_criteria"`
	ProjectCriteria      []CriterionPayload `json:"project_criteria"`
}

// ProblemStatementResponse serializes a problem statement.
type ProblemStatementResponse struct {
	ID        uint   `json:"id"`
	Statement string `json:"statement"`
	Type      string `json:"type"`
	Sponsor   string `json:"sponsor"`
}

// HackathonResponse serializes a hackathon with configuration.
type HackathonResponse struct {
	ID                uint                       `json:"id"`
	Slug              string                     `json:"slug"`
	Title             string                     `json:"title"`
	Description       string                     `json:"description"`
	OrganizerID       uint                       `json:"organizer_id"`
	MultiJudge        bool                       `json:"multi_judge"`
	JudgesPerProject  int                        `json:"judges_per_project"`
	Rounds            []RoundResponse            `json:"rounds"`
	ProblemStatements []ProblemStatementResponse `json:"problem_statements"`
	CreatedAt         time.Time                  `json:"created_at"`
}

// NewHackathonResponse maps the model to its response form.
func NewHackathonResponse(hackathon models.Hackathon) HackathonResponse {
	rounds := make([]RoundResponse, 0, len(hackathon.Rounds))
	for _, round := range hackathon.Rounds {
		rounds = append(rounds, RoundResponse{
			Index:                round.Index,
			Name:                 round.Name,
			Type:                 round.Type,
			StartsAt:             round.StartsAt,
			EndsAt:               round.EndsAt,
			PresentationCriteria: newCriterionPayloads(round.PresentationCriteria),
			ProjectCriteria:      newCriterionPayloads(round.ProjectCriteria),
		})
	}

	statements := make([]ProblemStatementResponse, 0, len(hackathon.ProblemStatements))
	for _, ps := range hackathon.ProblemStatements {
		statements = append(statements, ProblemStatementResponse{
			ID:        ps.ID,
			Statement: ps.Statement,
			Type:      ps.Type,
			Sponsor:   ps.Sponsor,
		})
	}

	return HackathonResponse{
		ID:                hackathon.ID,
		Slug:              hackathon.Slug,
		Title:             hackathon.Title,
		Description:       hackathon.Description,
		OrganizerID:       hackathon.OrganizerID,
		MultiJudge:        hackathon.MultiJudge,
		JudgesPerProject:  hackathon.JudgesPerProject,
		Rounds:            rounds,
		ProblemStatements: statements,
		CreatedAt:         hackathon.CreatedAt,
	}
}

// NewHackathonResponseSlice maps a list of hackathons.
func NewHackathonResponseSlice(hackathons []models.Hackathon) []HackathonResponse {
	responses := make([]HackathonResponse, 0, len(hackathons))
	for _, hackathon := range hackathons {
		responses = append(responses, NewHackathonResponse(hackathon))
	}
	return responses
}

func newCriterionPayloads(criteria []models.Criterion) []CriterionPayload {
	payloads := make([]CriterionPayload, 0, len(criteria))
	for _, criterion := range criteria {
		payloads = append(payloads, CriterionPayload{
			Name:     criterion.Name,
			MaxScore: criterion.MaxScore,
			Weight:   criterion.Weight,
		})
	}
	return payloads
}
