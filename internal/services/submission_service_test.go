package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/events"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// fakePaperRepo records writes so tests can assert what was persisted.
type fakePaperRepo struct {
	papers       []*models.ResearchPaper
	advisors     []*models.PaperAdvisor
	contributors []*models.PaperContributor
}

func (f *fakePaperRepo) Create(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error {
	if paper.ID == "" {
		paper.ID = "paper-1"
	}
	f.papers = append(f.papers, paper)
	return nil
}

func (f *fakePaperRepo) Update(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error {
	return nil
}

func (f *fakePaperRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error { return nil }

func (f *fakePaperRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error) {
	for _, p := range f.papers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaperRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakePaperRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.PaperFilters) ([]*models.ResearchPaper, int64, error) {
	return f.papers, int64(len(f.papers)), nil
}

func (f *fakePaperRepo) CreateAdvisors(ctx context.Context, tx *gorm.DB, advisors []*models.PaperAdvisor) error {
	f.advisors = append(f.advisors, advisors...)
	return nil
}

func (f *fakePaperRepo) GetAdvisorLink(ctx context.Context, tx *gorm.DB, paperID, advisorID string) (*models.PaperAdvisor, error) {
	for _, a := range f.advisors {
		if a.PaperID == paperID && a.AdvisorID == advisorID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaperRepo) UpdateAdvisorLink(ctx context.Context, tx *gorm.DB, link *models.PaperAdvisor) error {
	return nil
}

func (f *fakePaperRepo) CreateContributors(ctx context.Context, tx *gorm.DB, contributors []*models.PaperContributor) error {
	f.contributors = append(f.contributors, contributors...)
	return nil
}

func (f *fakePaperRepo) DeleteLinks(ctx context.Context, tx *gorm.DB, paperID string) error {
	return nil
}

// fakeStorage records saved and deleted object keys.
type fakeStorage struct {
	saved   []string
	deleted []string
}

func (s *fakeStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	s.saved = append(s.saved, key)
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

type submissionFixture struct {
	svc       SubmissionService
	userRepo  *fakeUserRepo
	paperRepo *fakePaperRepo
	store     *fakeStorage
	publisher *events.MockEventPublisher
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := newFakeUserRepo()
	paperRepo := &fakePaperRepo{}
	repo := &fakeRepo{user: userRepo, paper: paperRepo}
	store := &fakeStorage{}
	publisher := events.NewMockEventPublisher(logger)
	notifier := NewNotificationEventService(repo, publisher, logger, validator.New())

	svc := NewSubmissionService(repo, nil, logger, validator.New(), cache.NewCacheManager(client), store, notifier)

	return &submissionFixture{
		svc:       svc,
		userRepo:  userRepo,
		paperRepo: paperRepo,
		store:     store,
		publisher: publisher,
	}
}

func (f *submissionFixture) seedPeople() {
	f.userRepo.users["reviewer@university.edu"] = &models.User{
		ID: "faculty-1", Name: "Reviewer", Email: "reviewer@university.edu", Role: models.RoleFaculty, IsVerified: true,
	}
	f.userRepo.users["advisor@university.edu"] = &models.User{
		ID: "faculty-2", Name: "Advisor", Email: "advisor@university.edu", Role: models.RoleFaculty, IsVerified: true,
	}
	f.userRepo.users["author@university.edu"] = &models.User{
		ID: "student-1", Name: "Author", Email: "author@university.edu", Role: models.RoleStudent, IsVerified: true,
	}
}

// walkToReview drives a draft through all three input steps.
func (f *submissionFixture) walkToReview(t *testing.T, ctx context.Context, userID string) {
	t.Helper()

	title := "Graph Sparsification at Scale"
	abstract := "We study spectral sparsifiers for large dynamic graphs."
	keywords := "graphs, spectral, sparsification"
	draft, err := f.svc.Advance(ctx, userID, &DraftUpdateRequest{
		Title: &title, Abstract: &abstract, Keywords: &keywords,
	})
	require.NoError(t, err)
	require.Equal(t, StepPeople, draft.Step)

	advisors := []string{"advisor@university.edu"}
	reviewer := "reviewer@university.edu"
	students := []StudentEntry{{Email: "author@university.edu", Contribution: "All of it"}}
	draft, err = f.svc.Advance(ctx, userID, &DraftUpdateRequest{
		AdvisorEmails: &advisors, ReviewerEmail: &reviewer, Students: &students,
	})
	require.NoError(t, err)
	require.Equal(t, StepFile, draft.Step)

	fileName := "paper.pdf"
	fileSize := int64(1024)
	contentType := "application/pdf"
	draft, err = f.svc.Advance(ctx, userID, &DraftUpdateRequest{
		FileName: &fileName, FileSize: &fileSize, FileContentType: &contentType,
	})
	require.NoError(t, err)
	require.Equal(t, StepReview, draft.Step)
}

func TestSubmissionService_WizardSteps(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	draft, err := f.svc.GetDraft(ctx, "student-1")
	require.NoError(t, err)
	require.Equal(t, StepDetails, draft.Step)

	// A short abstract fails step validation and the step does not move
	title := "Graph Sparsification at Scale"
	shortAbstract := "too short"
	keywords := "graphs"
	_, err = f.svc.Advance(ctx, "student-1", &DraftUpdateRequest{
		Title: &title, Abstract: &shortAbstract, Keywords: &keywords,
	})
	var validationErrors ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	draft, err = f.svc.GetDraft(ctx, "student-1")
	require.NoError(t, err)
	require.Equal(t, StepDetails, draft.Step)

	// Valid details advance to the people step
	abstract := "We study spectral sparsifiers for large dynamic graphs."
	draft, err = f.svc.Advance(ctx, "student-1", &DraftUpdateRequest{
		Title: &title, Abstract: &abstract, Keywords: &keywords,
	})
	require.NoError(t, err)
	require.Equal(t, StepPeople, draft.Step)

	// Back floors at the first step and keeps entered values
	draft, err = f.svc.Back(ctx, "student-1")
	require.NoError(t, err)
	require.Equal(t, StepDetails, draft.Step)
	require.Equal(t, title, draft.Title)

	draft, err = f.svc.Back(ctx, "student-1")
	require.NoError(t, err)
	require.Equal(t, StepDetails, draft.Step)
}

func TestSubmissionService_AdvancePastReviewRejected(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	f.seedPeople()

	f.walkToReview(t, ctx, "student-1")

	_, err := f.svc.Advance(ctx, "student-1", &DraftUpdateRequest{})
	require.ErrorIs(t, err, ErrDraftInvalidStep)
}

func TestSubmissionService_CommitRejectsBadFileBeforeAnyWrite(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	f.seedPeople()

	f.walkToReview(t, ctx, "student-1")

	// Oversize upload
	_, err := f.svc.Commit(ctx, "student-1", &CommitFile{
		Name:        "paper.pdf",
		Size:        validator.MaxUploadBytes + 1,
		ContentType: "application/pdf",
		Reader:      strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrUploadFailed)

	// Disallowed content type
	_, err = f.svc.Commit(ctx, "student-1", &CommitFile{
		Name:        "paper.zip",
		Size:        100,
		ContentType: "application/zip",
		Reader:      strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrUploadFailed)

	// A missing content type counts as unrecognized too
	_, err = f.svc.Commit(ctx, "student-1", &CommitFile{
		Name:        "paper.bin",
		Size:        100,
		ContentType: "",
		Reader:      strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrUploadFailed)

	// Nothing was stored or persisted
	require.Empty(t, f.store.saved)
	require.Empty(t, f.paperRepo.papers)
	require.Empty(t, f.paperRepo.advisors)
	require.Empty(t, f.paperRepo.contributors)
}

func TestSubmissionService_CommitPersistsAndClearsDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	f.seedPeople()

	f.walkToReview(t, ctx, "student-1")

	result, err := f.svc.Commit(ctx, "student-1", &CommitFile{
		Name:        "paper.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		Reader:      strings.NewReader("pdf bytes"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.PaperID)

	require.Len(t, f.paperRepo.papers, 1)
	paper := f.paperRepo.papers[0]
	require.Equal(t, models.PaperSubmitted, paper.Status)
	require.Equal(t, "faculty-1", paper.ReviewerID)
	require.Equal(t, "student-1", paper.SubmittedBy)
	require.NotNil(t, paper.FilePath)
	require.Contains(t, *paper.FilePath, "papers/student-1/")

	require.Len(t, f.paperRepo.advisors, 1)
	require.Equal(t, models.AdvisorPending, f.paperRepo.advisors[0].AcceptanceStatus)

	require.Len(t, f.paperRepo.contributors, 1)
	require.Equal(t, "student-1", f.paperRepo.contributors[0].UserID)

	require.Len(t, f.store.saved, 1)

	// The submitted event carries the advisor IDs
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	payload, ok := published[0].Data.(events.PaperSubmittedEvent)
	require.True(t, ok)
	require.Equal(t, []string{"faculty-2"}, payload.AdvisorIDs)

	// The draft is gone; the next one starts fresh
	draft, err := f.svc.GetDraft(ctx, "student-1")
	require.NoError(t, err)
	require.Equal(t, StepDetails, draft.Step)
	require.Empty(t, draft.Title)
}

func TestSubmissionService_CommitRequiresFacultyReviewer(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	f.seedPeople()

	// Demote the reviewer before commit
	f.userRepo.users["reviewer@university.edu"].Role = models.RoleStudent

	f.walkToReview(t, ctx, "student-1")

	_, err := f.svc.Commit(ctx, "student-1", &CommitFile{
		Name:        "paper.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		Reader:      strings.NewReader("pdf bytes"),
	})
	require.ErrorIs(t, err, ErrPersonNotFaculty)

	// The uploaded object was cleaned up and nothing was persisted
	require.Len(t, f.store.saved, 1)
	require.Len(t, f.store.deleted, 1)
	require.Equal(t, f.store.saved[0], f.store.deleted[0])
	require.Empty(t, f.paperRepo.papers)
}
