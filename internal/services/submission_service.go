package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/storage"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

const commitLockTTL = 30 * time.Second

type submissionService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
	storage      storage.Storage
	notifier     NotificationEventService
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, store storage.Storage, notifier NotificationEventService) SubmissionService {
	return &submissionService{
		repo:         repo,
		db:           db,
		logger:       logger,
		validator:    validator,
		cacheManager: cacheManager,
		storage:      store,
		notifier:     notifier,
	}
}

// ===== DRAFT LIFECYCLE =====

func (s *submissionService) GetDraft(ctx context.Context, userID string) (*SubmissionDraft, error) {
	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = newDraft(userID)
		if err := s.saveDraft(ctx, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

func (s *submissionService) Advance(ctx context.Context, userID string, req *DraftUpdateRequest) (*SubmissionDraft, error) {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	if draft.Step >= StepReview {
		return nil, ErrDraftInvalidStep
	}

	// Merge only the fields owned by the current step, then validate them.
	// On a validation error the step does not move and nothing is persisted.
	s.mergeStep(draft, req)

	if errs := s.validateStep(draft); len(errs) > 0 {
		return nil, errs
	}

	draft.Step++
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.logger.Info("Submission draft advanced", "user_id", userID, "step", draft.Step)
	return draft, nil
}

func (s *submissionService) Back(ctx context.Context, userID string) (*SubmissionDraft, error) {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Going back never loses entered values and floors at step 1
	if draft.Step > StepDetails {
		draft.Step--
		if err := s.saveDraft(ctx, draft); err != nil {
			return nil, err
		}
	}

	return draft, nil
}

// ===== COMMIT =====

func (s *submissionService) Commit(ctx context.Context, userID string, file *CommitFile) (*CommitResult, error) {
	s.logger.Info("Committing submission", "user_id", userID)

	// One commit at a time per user
	acquired, err := s.cacheManager.Fast.SetNX(ctx, "submit:"+userID, "1", commitLockTTL)
	if err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return nil, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	if err == nil {
		if !acquired {
			return nil, ErrSubmissionInProgress
		}
		defer cache.SafeDelete(ctx, s.cacheManager.Fast, "submit:"+userID)
	}

	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	if draft.Step != StepReview {
		return nil, ErrDraftInvalidStep
	}

	// Re-validate the whole draft before any side effect
	bv := s.validator.GetBusinessValidator()
	if errs := bv.ValidateDraftDetails(draft.Title, draft.Abstract, draft.Keywords); len(errs) > 0 {
		return nil, errs
	}
	if errs := bv.ValidateDraftPeople(draft.AdvisorEmails, draft.ReviewerEmail, draft.Students); len(errs) > 0 {
		return nil, errs
	}

	// Upload first so no records exist if the file is rejected
	filePath, err := s.uploadFile(ctx, userID, file)
	if err != nil {
		return nil, err
	}

	reviewer, advisors, students, err := s.resolvePeople(ctx, draft)
	if err != nil {
		s.cleanupUpload(ctx, filePath)
		return nil, err
	}

	keywords, err := marshalKeywords(draft.Keywords)
	if err != nil {
		s.cleanupUpload(ctx, filePath)
		return nil, err
	}

	paper := &models.ResearchPaper{
		Title:       draft.Title,
		Abstract:    draft.Abstract,
		Keywords:    keywords,
		FilePath:    filePath,
		Status:      models.PaperSubmitted,
		ReviewerID:  reviewer.ID,
		SubmittedBy: userID,
	}

	advisorIDs := make([]string, 0, len(advisors))
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Paper().Create(ctx, nil, paper); err != nil {
			return err
		}

		links := make([]*models.PaperAdvisor, 0, len(advisors))
		for _, advisor := range advisors {
			links = append(links, &models.PaperAdvisor{
				PaperID:          paper.ID,
				AdvisorID:        advisor.ID,
				AcceptanceStatus: models.AdvisorPending,
			})
			advisorIDs = append(advisorIDs, advisor.ID)
		}
		if err := txRepo.Paper().CreateAdvisors(ctx, nil, links); err != nil {
			return err
		}

		contributors := make([]*models.PaperContributor, 0, len(students))
		for i, student := range students {
			contributors = append(contributors, &models.PaperContributor{
				PaperID:      paper.ID,
				UserID:       student.ID,
				Contribution: draft.Students[i].Contribution,
			})
		}
		return txRepo.Paper().CreateContributors(ctx, nil, contributors)
	})
	if err != nil {
		// The upload already happened; remove the orphan object best-effort
		s.cleanupUpload(ctx, filePath)
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	if err := s.notifier.NotifyPaperSubmitted(ctx, paper, advisorIDs); err != nil {
		s.logger.Error("Failed to publish paper submitted event", "error", err, "paper_id", paper.ID)
	}

	if err := s.deleteDraft(ctx, userID); err != nil {
		s.logger.Error("Failed to clear submission draft", "error", err, "user_id", userID)
	}

	s.logger.Info("Submission committed", "user_id", userID, "paper_id", paper.ID)
	return &CommitResult{PaperID: paper.ID}, nil
}

// uploadFile validates and stores the file bytes, returning the storage key.
// A nil file is allowed and yields a nil path.
func (s *submissionService) uploadFile(ctx context.Context, userID string, file *CommitFile) (*string, error) {
	if file == nil {
		return nil, nil
	}

	if errs := s.validator.GetBusinessValidator().ValidateDraftFile(file.Name, file.Size, file.ContentType); len(errs) > 0 {
		return nil, ErrUploadFailed
	}

	key := fmt.Sprintf("papers/%s/%s%s", userID, uuid.NewString(), path.Ext(file.Name))
	if err := s.storage.Save(ctx, key, file.Reader, file.Size, file.ContentType); err != nil {
		s.logger.Error("File upload failed", "error", err, "user_id", userID)
		return nil, ErrUploadFailed
	}

	return &key, nil
}

func (s *submissionService) cleanupUpload(ctx context.Context, filePath *string) {
	if filePath == nil {
		return
	}
	if err := s.storage.Delete(ctx, *filePath); err != nil {
		s.logger.Error("Failed to remove uploaded file", "error", err, "key", *filePath)
	}
}

// resolvePeople maps the draft's emails to accounts, enforcing the FACULTY
// role for the reviewer and every advisor.
func (s *submissionService) resolvePeople(ctx context.Context, draft *SubmissionDraft) (reviewer *models.User, advisors []*models.User, students []*models.User, err error) {
	reviewer, err = s.resolveFaculty(ctx, draft.ReviewerEmail)
	if err != nil {
		return nil, nil, nil, err
	}

	advisors = make([]*models.User, 0, len(draft.AdvisorEmails))
	for _, email := range draft.AdvisorEmails {
		advisor, err := s.resolveFaculty(ctx, email)
		if err != nil {
			return nil, nil, nil, err
		}
		advisors = append(advisors, advisor)
	}

	students = make([]*models.User, 0, len(draft.Students))
	for _, entry := range draft.Students {
		student, err := s.resolveUser(ctx, entry.Email)
		if err != nil {
			return nil, nil, nil, err
		}
		students = append(students, student)
	}

	return reviewer, advisors, students, nil
}

func (s *submissionService) resolveUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, email)
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", email, err)
	}
	return user, nil
}

func (s *submissionService) resolveFaculty(ctx context.Context, email string) (*models.User, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleFaculty && user.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFaculty, email)
	}
	return user, nil
}

// ===== STEP MERGE AND VALIDATION =====

func (s *submissionService) mergeStep(draft *SubmissionDraft, req *DraftUpdateRequest) {
	switch draft.Step {
	case StepDetails:
		if req.Title != nil {
			draft.Title = *req.Title
		}
		if req.Abstract != nil {
			draft.Abstract = *req.Abstract
		}
		if req.Keywords != nil {
			draft.Keywords = *req.Keywords
		}
	case StepPeople:
		if req.AdvisorEmails != nil {
			draft.AdvisorEmails = *req.AdvisorEmails
		}
		if req.ReviewerEmail != nil {
			draft.ReviewerEmail = *req.ReviewerEmail
		}
		if req.Students != nil {
			draft.Students = *req.Students
		}
	case StepFile:
		if req.FileName != nil {
			draft.FileName = *req.FileName
		}
		if req.FileSize != nil {
			draft.FileSize = *req.FileSize
		}
		if req.FileContentType != nil {
			draft.FileContentType = *req.FileContentType
		}
	}
}

func (s *submissionService) validateStep(draft *SubmissionDraft) validator.ValidationErrors {
	bv := s.validator.GetBusinessValidator()

	switch draft.Step {
	case StepDetails:
		return bv.ValidateDraftDetails(draft.Title, draft.Abstract, draft.Keywords)
	case StepPeople:
		return bv.ValidateDraftPeople(draft.AdvisorEmails, draft.ReviewerEmail, draft.Students)
	case StepFile:
		return bv.ValidateDraftFile(draft.FileName, draft.FileSize, draft.FileContentType)
	}

	return nil
}

// ===== DRAFT STORAGE =====

func newDraft(userID string) *SubmissionDraft {
	return &SubmissionDraft{
		UserID:    userID,
		Step:      StepDetails,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *submissionService) loadDraft(ctx context.Context, userID string) (*SubmissionDraft, error) {
	var draft SubmissionDraft
	err := s.cacheManager.Draft.Get(ctx, userID, &draft)
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return &draft, nil
}

func (s *submissionService) saveDraft(ctx context.Context, draft *SubmissionDraft) error {
	draft.UpdatedAt = time.Now().UTC()
	if err := s.cacheManager.Draft.Set(ctx, draft.UserID, draft, cache.DraftCacheConfig.TTL); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *submissionService) deleteDraft(ctx context.Context, userID string) error {
	return s.cacheManager.Draft.Delete(ctx, userID)
}

func marshalKeywords(raw string) (datatypes.JSON, error) {
	keywords := validator.ParseKeywords(raw)
	data, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}
	return datatypes.JSON(data), nil
}
