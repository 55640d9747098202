package repository

import (
	"fmt"
	"testing"

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
