package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResearchRun archives one completed research session.
type ResearchRun struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Query            string                      `gorm:"type:text;not null" json:"query"`
	ReportType       string                      `gorm:"type:varchar(50);not null;index:idx_research_runs_type" json:"report_type"`
	Agent            string                      `gorm:"type:varchar(100)" json:"agent"`
	Report           string                      `gorm:"type:text" json:"report"`
	Model            string                      `gorm:"type:varchar(100)" json:"model"`
	PromptTokens     int                         `json:"prompt_tokens"`
	CompletionTokens int                         `json:"completion_tokens"`
	SourceURLs       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"source_urls"`
	SubQueries       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"sub_queries"`
	PDFPath          string                      `gorm:"type:varchar(255)" json:"pdf_path"`
	DocxPath         string                      `gorm:"type:varchar(255)" json:"docx_path"`
	DurationMs       int64                       `json:"duration_ms"`
	CreatedAt        time.Time                   `gorm:"default:CURRENT_TIMESTAMP;index:idx_research_runs_created" json:"created_at"`
}
