package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Hackathon{},
		&models.Round{},
		&models.ProblemStatement{},
		&models.Participant{},
		&models.Team{},
		&models.TeamMember{},
		&models.JudgeAssignment{},
		&models.RoundAssignment{},
		&models.Submission{},
		&models.Score{},
		&models.RoundProgress{},
		&models.Notification{},
	))
	return db
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// seedHackathon creates a two-round hackathon whose first round is open and
// returns it with rounds and statements loaded.
func seedHackathon(t *testing.T, db *gorm.DB) models.Hackathon {
	t.Helper()

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug:        fmt.Sprintf("hack-%s", t.Name()),
		Title:       "Test Hackathon",
		OrganizerID: 1,
		Rounds: []models.Round{
			{Index: 0, Name: "Ideation", Type: models.RoundTypePPT, StartsAt: now.Add(-time.Hour)},
			{Index: 1, Name: "Finals", Type: models.RoundTypeBoth, StartsAt: now.Add(-time.Hour)},
		},
		ProblemStatements: []models.ProblemStatement{
			{Statement: "Build something useful", Type: models.ProblemStatementGeneral},
		},
	}
	require.NoError(t, db.Create(&hackathon).Error)
	return hackathon
}

func intPointer(v int) *int           { return &v }
func floatPointer(v float64) *float64 { return &v }
func uintPointer(v uint) *uint        { return &v }

// recordingNotifier captures Send calls synchronously for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []models.Notification
	cleared []string
}

func (n *recordingNotifier) Send(_ context.Context, notification models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) ClearByType(_ context.Context, _ uint, notificationType string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cleared = append(n.cleared, notificationType)
	return 0, nil
}

func (n *recordingNotifier) byType(notificationType string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var matched []models.Notification
	for _, notification := range n.sent {
		if notification.Type == notificationType {
			matched = append(matched, notification)
		}
	}
	return matched
}
