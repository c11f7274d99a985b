package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RSPP-2025/paper-portal/internal/events"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// notificationEventService publishes domain events for downstream
// consumers (notification workers, audit log, analytics).
type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

func (s *notificationEventService) NotifyUserRegistered(ctx context.Context, user *models.User) error {
	event := events.NewEvent(events.TopicUserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicUserRegistered, event); err != nil {
		return fmt.Errorf("failed to publish user registered event: %w", err)
	}

	s.logger.Info("Published user registered event", "user_id", user.ID)
	return nil
}

func (s *notificationEventService) NotifyUserVerified(ctx context.Context, user *models.User) error {
	event := events.NewEvent(events.TopicUserVerified, events.UserVerifiedEvent{
		UserID: user.ID,
		Email:  user.Email,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicUserVerified, event); err != nil {
		return fmt.Errorf("failed to publish user verified event: %w", err)
	}

	s.logger.Info("Published user verified event", "user_id", user.ID)
	return nil
}

func (s *notificationEventService) NotifyPaperSubmitted(ctx context.Context, paper *models.ResearchPaper, advisorIDs []string) error {
	event := events.NewEvent(events.TopicPaperSubmitted, events.PaperSubmittedEvent{
		PaperID:     paper.ID,
		Title:       paper.Title,
		SubmittedBy: paper.SubmittedBy,
		ReviewerID:  paper.ReviewerID,
		AdvisorIDs:  advisorIDs,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicPaperSubmitted, event); err != nil {
		return fmt.Errorf("failed to publish paper submitted event: %w", err)
	}

	s.logger.Info("Published paper submitted event", "paper_id", paper.ID)
	return nil
}

func (s *notificationEventService) NotifyPaperStatusChanged(ctx context.Context, paper *models.ResearchPaper, previous models.PaperStatus, changedBy string) error {
	event := events.NewEvent(events.TopicPaperStatusChanged, events.PaperStatusChangedEvent{
		PaperID:   paper.ID,
		OldStatus: string(previous),
		NewStatus: string(paper.Status),
		ChangedBy: changedBy,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicPaperStatusChanged, event); err != nil {
		return fmt.Errorf("failed to publish paper status changed event: %w", err)
	}

	s.logger.Info("Published paper status changed event",
		"paper_id", paper.ID,
		"old_status", previous,
		"new_status", paper.Status)
	return nil
}
