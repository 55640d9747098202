package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

type stubUploader struct {
	url      string
	uploaded []string
}

func (u *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	u.uploaded = append(u.uploaded, name)
	return u.url, nil
}

func newSubmissionService(db *gorm.DB, uploader FileUploader) SubmissionService {
	eligibility := newEligibilityService(db, EngineOptions{})
	return NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewHackathonRepository(db),
		eligibility,
		uploader,
		newTestValidator(),
		zerolog.Nop(),
	)
}

// buildFileHeader assembles a real multipart file header around the given
// content so the sniffing path runs against actual bytes.
func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buffer, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestCreateProjectSubmission(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	svc := newSubmissionService(db, &stubUploader{})

	response, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindProject,
		Title:              "Routing engine",
		RepoURL:            "https://github.com/example/routing",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.Equal(t, "https://github.com/example/routing", response.RepoURL)
	require.Empty(t, response.AssetURL)
	require.False(t, response.SubmittedAt.IsZero())
}

func TestCreatePresentationUploadsDeck(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	uploader := &stubUploader{url: "https://cdn.example.com/deck.pdf"}
	svc := newSubmissionService(db, uploader)

	file := buildFileHeader(t, "deck.pdf", []byte("%PDF-1.4\n%made up deck content"))

	response, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindPresentation,
		Title:              "Pitch deck",
	}, file)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/deck.pdf", response.AssetURL)
	require.Equal(t, []string{"deck.pdf"}, uploader.uploaded)
}

func TestCreatePresentationRejectsWrongFileType(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	svc := newSubmissionService(db, &stubUploader{})
	file := buildFileHeader(t, "notes.txt", []byte("just some plain text"))

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindPresentation,
		Title:              "Pitch deck",
	}, file)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported presentation type")
}

func TestCreatePresentationRequiresFile(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	_, err := newSubmissionService(db, &stubUploader{}).Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindPresentation,
		Title:              "Pitch deck",
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "file is required")
}

func TestCreateRejectsDuplicatePerActorAndRound(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	svc := newSubmissionService(db, &stubUploader{})
	payload := dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindProject,
		Title:              "Routing engine",
		RepoURL:            "https://github.com/example/routing",
	}

	_, err := svc.Create(context.Background(), payload, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), payload, nil)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestCreateRejectsIneligibleActor(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	// No round 0 progress exists, so nobody advanced to round 1.
	_, err := newSubmissionService(db, &stubUploader{}).Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		RoundIndex:         1,
		ParticipantID:      1,
		ProblemStatementID: statementID,
		Kind:               models.SubmissionKindProject,
		Title:              "Routing engine",
		RepoURL:            "https://github.com/example/routing",
	}, nil)
	require.ErrorIs(t, err, ErrNotEligible)
}

func TestCreateRejectsClosedRound(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	hackathon := models.Hackathon{
		Slug: "not-yet", Title: "Not Yet", OrganizerID: 1,
		Rounds: []models.Round{
			{Index: 0, Name: "Later", Type: models.RoundTypeProject, StartsAt: now.Add(time.Hour)},
		},
		ProblemStatements: []models.ProblemStatement{
			{Statement: "PS", Type: models.ProblemStatementGeneral},
		},
	}
	require.NoError(t, db.Create(&hackathon).Error)

	_, err := newSubmissionService(db, &stubUploader{}).Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: hackathon.ProblemStatements[0].ID,
		Kind:               models.SubmissionKindProject,
		Title:              "Routing engine",
		RepoURL:            "https://github.com/example/routing",
	}, nil)
	require.ErrorIs(t, err, ErrRoundClosed)
}

func TestCreateRejectsForeignProblemStatement(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)

	_, err := newSubmissionService(db, &stubUploader{}).Create(context.Background(), dto.SubmissionCreateRequest{
		HackathonID:        hackathon.ID,
		ParticipantID:      1,
		ProblemStatementID: 999,
		Kind:               models.SubmissionKindProject,
		Title:              "Routing engine",
		RepoURL:            "https://github.com/example/routing",
	}, nil)
	require.ErrorIs(t, err, ErrProblemStatementNotFound)
}

func TestListAndGetSubmissions(t *testing.T) {
	db := openTestDB(t)
	hackathon := seedHackathon(t, db)
	statementID := hackathon.ProblemStatements[0].ID

	created := createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, ParticipantID: 1, ProblemStatementID: statementID, Title: "Entry",
	})
	createSubmission(t, db, models.Submission{
		HackathonID: hackathon.ID, RoundIndex: 1, ParticipantID: 2, ProblemStatementID: statementID, Title: "Other",
	})

	svc := newSubmissionService(db, &stubUploader{})

	listed, err := svc.List(context.Background(), dto.SubmissionFilter{
		HackathonID: uintPointer(hackathon.ID),
		RoundIndex:  intPointer(0),
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Entry", fetched.Title)

	_, err = svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
