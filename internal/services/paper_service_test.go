package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RSPP-2025/paper-portal/internal/events"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

type paperFixture struct {
	svc       PaperService
	userRepo  *fakeUserRepo
	paperRepo *fakePaperRepo
	store     *fakeStorage
}

func newPaperFixture(t *testing.T) *paperFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := newFakeUserRepo()
	paperRepo := &fakePaperRepo{}
	repo := &fakeRepo{user: userRepo, paper: paperRepo}
	store := &fakeStorage{}
	notifier := NewNotificationEventService(repo, events.NewMockEventPublisher(logger), logger, validator.New())

	svc := NewPaperService(repo, nil, logger, validator.New(), store, notifier)

	userRepo.users["admin@university.edu"] = &models.User{
		ID: "admin-1", Name: "Admin", Email: "admin@university.edu", Role: models.RoleAdmin, IsVerified: true,
	}
	userRepo.users["author@university.edu"] = &models.User{
		ID: "student-1", Name: "Author", Email: "author@university.edu", Role: models.RoleStudent, IsVerified: true,
	}

	return &paperFixture{svc: svc, userRepo: userRepo, paperRepo: paperRepo, store: store}
}

func TestPaperService_DeleteRemovesUploadedFile(t *testing.T) {
	f := newPaperFixture(t)
	ctx := context.Background()

	filePath := "papers/student-1/abc.pdf"
	f.paperRepo.papers = append(f.paperRepo.papers, &models.ResearchPaper{
		ID:          "paper-1",
		Title:       "Graph Sparsification at Scale",
		Status:      models.PaperSubmitted,
		FilePath:    &filePath,
		ReviewerID:  "faculty-1",
		SubmittedBy: "student-1",
	})

	err := f.svc.Delete(ctx, "paper-1", "admin-1")
	require.NoError(t, err)
	require.Equal(t, []string{filePath}, f.store.deleted)
}

func TestPaperService_DeleteWithoutFileSkipsStorage(t *testing.T) {
	f := newPaperFixture(t)
	ctx := context.Background()

	f.paperRepo.papers = append(f.paperRepo.papers, &models.ResearchPaper{
		ID:          "paper-1",
		Title:       "Graph Sparsification at Scale",
		Status:      models.PaperSubmitted,
		ReviewerID:  "faculty-1",
		SubmittedBy: "student-1",
	})

	err := f.svc.Delete(ctx, "paper-1", "admin-1")
	require.NoError(t, err)
	require.Empty(t, f.store.deleted)
}

func TestPaperService_DeleteRequiresAdmin(t *testing.T) {
	f := newPaperFixture(t)
	ctx := context.Background()

	filePath := "papers/student-1/abc.pdf"
	f.paperRepo.papers = append(f.paperRepo.papers, &models.ResearchPaper{
		ID:          "paper-1",
		Title:       "Graph Sparsification at Scale",
		Status:      models.PaperSubmitted,
		FilePath:    &filePath,
		SubmittedBy: "student-1",
	})

	err := f.svc.Delete(ctx, "paper-1", "student-1")
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	require.Empty(t, f.store.deleted)
}
