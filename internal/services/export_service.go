package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// exportService renders admin exports as xlsx workbooks
type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *exportService) ExportUsers(ctx context.Context) ([]byte, error) {
	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load users for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Role", "Position", "Verified", "Created At"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, user := range users {
		row := i + 2
		position := ""
		if user.Position != nil {
			position = *user.Position
		}
		cells := []interface{}{
			user.ID,
			user.Name,
			user.Email,
			string(user.Role),
			position,
			user.IsVerified,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render users export: %w", err)
	}

	s.logger.Info("Users exported", "count", len(users))
	return buf.Bytes(), nil
}

func (s *exportService) ExportPapers(ctx context.Context) ([]byte, error) {
	papers, _, err := s.repo.Paper().List(ctx, nil, repositories.PaperFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load papers for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Papers"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Status", "Submitted By", "Reviewer", "Keywords", "Submitted At"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, paper := range papers {
		row := i + 2
		cells := []interface{}{
			paper.ID,
			paper.Title,
			string(paper.Status),
			exportUserName(paper.Submitter, paper.SubmittedBy),
			exportUserName(paper.Reviewer, paper.ReviewerID),
			keywordsAsString(paper),
			paper.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render papers export: %w", err)
	}

	s.logger.Info("Papers exported", "count", len(papers))
	return buf.Bytes(), nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell: %w", err)
		}
	}
	return nil
}

func exportUserName(user *models.User, fallbackID string) string {
	if user != nil {
		return user.Name
	}
	return fallbackID
}

func keywordsAsString(paper *models.ResearchPaper) string {
	if len(paper.Keywords) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(paper.Keywords, &list); err != nil {
		return ""
	}
	return strings.Join(list, ", ")
}
