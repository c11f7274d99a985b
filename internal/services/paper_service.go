package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/storage"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

type paperService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Storage
	notifier  NotificationEventService
}

func NewPaperService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Storage, notifier NotificationEventService) PaperService {
	return &paperService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
		notifier:  notifier,
	}
}

// ===== READ OPERATIONS =====

func (s *paperService) GetByID(ctx context.Context, id string, userID string) (*PaperResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	paper, err := s.repo.Paper().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}

	if !s.canAccess(paper, user) {
		return nil, NewPermissionError(userID, id, "paper", "read", "not submitter, reviewer or advisor")
	}

	return s.buildPaperResponse(paper, user), nil
}

func (s *paperService) List(ctx context.Context, filters repositories.PaperFilters, userID string) (*PaperListResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Scope the listing by role: students see their own submissions,
	// faculty see papers assigned to them, admins see everything
	switch user.Role {
	case models.RoleStudent:
		filters.SubmittedBy = &user.ID
		filters.ReviewerID = nil
		filters.AdvisorID = nil
	case models.RoleFaculty:
		if filters.ReviewerID == nil && filters.AdvisorID == nil {
			filters.ReviewerID = &user.ID
		}
	}

	papers, total, err := s.repo.Paper().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}

	responses := make([]*PaperResponse, 0, len(papers))
	for _, paper := range papers {
		responses = append(responses, s.buildPaperResponse(paper, user))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &PaperListResponse{
		Papers: responses,
		Total:  total,
		Page:   page,
		Size:   filters.Limit,
	}, nil
}

// ===== UPDATE =====

func (s *paperService) Update(ctx context.Context, id string, req *PaperUpdateRequest, userID string) (*PaperResponse, error) {
	s.logger.Info("Updating paper", "paper_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleFaculty && user.Role != models.RoleAdmin {
		return nil, NewPermissionError(userID, id, "paper", "update", "requires faculty or admin role")
	}

	paper, err := s.repo.Paper().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}

	previousStatus := paper.Status
	statusChanged := false

	if req.Status != nil {
		next := models.PaperStatus(*req.Status)
		if next != paper.Status {
			if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(paper.Status, next, req.RejectionRemark); len(errs) > 0 {
				return nil, errs
			}
			paper.Status = next
			statusChanged = true
		}
	}

	s.applyPaperUpdates(paper, req)

	if err := s.repo.Paper().Update(ctx, nil, paper); err != nil {
		return nil, fmt.Errorf("failed to update paper: %w", err)
	}

	if statusChanged {
		if err := s.notifier.NotifyPaperStatusChanged(ctx, paper, previousStatus, userID); err != nil {
			s.logger.Error("Failed to publish paper status changed event", "error", err, "paper_id", paper.ID)
		}
	}

	s.logger.Info("Paper updated", "paper_id", id)
	return s.GetByID(ctx, id, userID)
}

func (s *paperService) applyPaperUpdates(paper *models.ResearchPaper, req *PaperUpdateRequest) {
	if req.Title != nil {
		paper.Title = *req.Title
	}
	if req.Abstract != nil {
		paper.Abstract = *req.Abstract
	}
	if req.Keywords != nil {
		if data, err := json.Marshal(validator.ParseKeywords(*req.Keywords)); err == nil {
			paper.Keywords = data
		}
	}
	if req.FilePath != nil {
		paper.FilePath = req.FilePath
	}
	if req.RejectionRemark != nil {
		paper.RejectionRemark = req.RejectionRemark
	}
	if req.ReviewerID != nil {
		paper.ReviewerID = *req.ReviewerID
	}
}

// ===== DELETE =====

func (s *paperService) Delete(ctx context.Context, id string, userID string) error {
	s.logger.Info("Deleting paper", "paper_id", id, "user_id", userID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return NewPermissionError(userID, id, "paper", "delete", "requires admin role")
	}

	paper, err := s.repo.Paper().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPaperNotFound
		}
		return fmt.Errorf("failed to get paper: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Paper().DeleteLinks(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Paper().Delete(ctx, nil, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}

	// Best-effort removal of the uploaded file; the records are already gone
	if paper.FilePath != nil {
		if err := s.storage.Delete(ctx, *paper.FilePath); err != nil {
			s.logger.Error("Failed to remove paper file", "error", err, "key", *paper.FilePath)
		}
	}

	s.logger.Info("Paper deleted", "paper_id", id)
	return nil
}

// ===== ADVISOR DECISION =====

func (s *paperService) AdvisorDecision(ctx context.Context, paperID string, req *AdvisorDecisionRequest, advisorID string) error {
	if err := s.validator.Validate(req); err != nil {
		return validator.ToValidationErrors(err)
	}

	link, err := s.repo.Paper().GetAdvisorLink(ctx, nil, paperID, advisorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAdvisorLinkNotFound
		}
		return fmt.Errorf("failed to get advisor link: %w", err)
	}

	now := time.Now()
	link.AcceptanceStatus = models.AdvisorStatus(req.Decision)
	link.DecisionAt = &now

	if err := s.repo.Paper().UpdateAdvisorLink(ctx, nil, link); err != nil {
		return fmt.Errorf("failed to update advisor link: %w", err)
	}

	s.logger.Info("Advisor decision recorded", "paper_id", paperID, "advisor_id", advisorID, "decision", req.Decision)
	return nil
}

// ===== HELPERS =====

func (s *paperService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *paperService) canAccess(paper *models.ResearchPaper, user *models.User) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	if paper.SubmittedBy == user.ID || paper.ReviewerID == user.ID {
		return true
	}
	for _, link := range paper.Advisors {
		if link.AdvisorID == user.ID {
			return true
		}
	}
	for _, contrib := range paper.Contributors {
		if contrib.UserID == user.ID {
			return true
		}
	}
	return false
}

func (s *paperService) buildPaperResponse(paper *models.ResearchPaper, user *models.User) *PaperResponse {
	return &PaperResponse{
		ResearchPaper: paper,
		CanEdit:       user.Role == models.RoleFaculty || user.Role == models.RoleAdmin,
		CanDelete:     user.Role == models.RoleAdmin,
	}
}
