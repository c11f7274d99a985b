package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaperStatus string

const (
	PaperSubmitted   PaperStatus = "SUBMITTED"
	PaperUnderReview PaperStatus = "UNDER_REVIEW"
	PaperAccepted    PaperStatus = "ACCEPTED"
	PaperRejected    PaperStatus = "REJECTED"
)

type AdvisorStatus string

const (
	AdvisorPending  AdvisorStatus = "PENDING"
	AdvisorAccepted AdvisorStatus = "ACCEPTED"
	AdvisorDeclined AdvisorStatus = "DECLINED"
)

// ResearchPaper is a committed submission. Keywords preserve the order the
// submitter entered them; duplicates are kept as-is.
type ResearchPaper struct {
	ID              string         `json:"id" gorm:"primaryKey;size:255"`
	Title           string         `json:"title" gorm:"not null;size:300"`
	Abstract        string         `json:"abstract" gorm:"not null;type:text"`
	Keywords        datatypes.JSON `json:"keywords" gorm:"type:jsonb"`
	FilePath        *string        `json:"file_path" gorm:"size:500"`
	Status          PaperStatus    `json:"status" gorm:"not null;size:20;default:SUBMITTED;index"`
	RejectionRemark *string        `json:"rejection_remark" gorm:"type:text"`

	ReviewerID  string `json:"reviewer_id" gorm:"not null;size:255;index"`
	SubmittedBy string `json:"submitted_by" gorm:"not null;size:255;index"`

	Reviewer     *User              `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Submitter    *User              `json:"submitter,omitempty" gorm:"foreignKey:SubmittedBy"`
	Advisors     []PaperAdvisor     `json:"advisors,omitempty" gorm:"foreignKey:PaperID"`
	Contributors []PaperContributor `json:"contributors,omitempty" gorm:"foreignKey:PaperID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ResearchPaper) TableName() string {
	return "research_papers"
}

func (p *ResearchPaper) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PaperAdvisor links a faculty advisor to a paper. Links start PENDING until
// the advisor records a decision.
type PaperAdvisor struct {
	ID               string        `json:"id" gorm:"primaryKey;size:255"`
	PaperID          string        `json:"paper_id" gorm:"not null;size:255;index"`
	AdvisorID        string        `json:"advisor_id" gorm:"not null;size:255;index"`
	AcceptanceStatus AdvisorStatus `json:"acceptance_status" gorm:"not null;size:20;default:PENDING"`
	AssignedAt       time.Time     `json:"assigned_at"`
	DecisionAt       *time.Time    `json:"decision_at"`

	Advisor *User `json:"advisor,omitempty" gorm:"foreignKey:AdvisorID"`
}

func (PaperAdvisor) TableName() string {
	return "paper_advisors"
}

func (a *PaperAdvisor) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	return nil
}

// PaperContributor links a student author to a paper with a free-form
// description of their contribution.
type PaperContributor struct {
	ID           string `json:"id" gorm:"primaryKey;size:255"`
	PaperID      string `json:"paper_id" gorm:"not null;size:255;index"`
	UserID       string `json:"user_id" gorm:"not null;size:255;index"`
	Contribution string `json:"contribution" gorm:"size:500"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (PaperContributor) TableName() string {
	return "paper_contributors"
}

func (c *PaperContributor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
