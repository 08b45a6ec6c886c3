package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus tracks a report through its workflow
type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusTriaged  ReportStatus = "triaged"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusClosed   ReportStatus = "closed"
)

// ReportCategory classifies what a report is about
type ReportCategory string

const (
	ReportCategoryDefect   ReportCategory = "defect"
	ReportCategoryContent  ReportCategory = "content"
	ReportCategoryFeedback ReportCategory = "feedback"
)

// Report is a user-filed report handled by operators
type Report struct {
	ID         uuid.UUID      `json:"id" bson:"_id"`
	ReporterID uuid.UUID      `json:"reporter_id" bson:"reporter_id"`
	Category   ReportCategory `json:"category" bson:"category"`
	Title      string         `json:"title" bson:"title"`
	Content    string         `json:"content" bson:"content"`
	Status     ReportStatus   `json:"status" bson:"status"`
	ResolvedBy *uuid.UUID     `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}

// CollectionName returns the MongoDB collection for the Report model
func (Report) CollectionName() string {
	return "reports"
}

// NewReport creates a new open Report
func NewReport(reporterID uuid.UUID, category ReportCategory, title, content string) *Report {
	now := time.Now()
	return &Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		Category:   category,
		Title:      title,
		Content:    content,
		Status:     ReportStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
