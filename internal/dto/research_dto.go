package dto

import (
	"time"

	"github.com/google/uuid"
)

// StartResearchRequest is the JSON payload of a "start" command received on
// the research websocket.
type StartResearchRequest struct {
	Task             string   `json:"task" validate:"required"`
	ReportType       string   `json:"report_type" validate:"required"`
	SourceURLs       []string `json:"source_urls"`
	ConfigPath       string   `json:"config_path"`
	PromptTokenLimit int      `json:"prompt_token_limit" validate:"omitempty,gt=0"`
	TotalWords       int      `json:"total_words" validate:"omitempty,gt=0"`
}

// ResearchRunResponse is one archived run as served by the history API.
type ResearchRunResponse struct {
	ID               uuid.UUID `json:"id"`
	Query            string    `json:"query"`
	ReportType       string    `json:"report_type"`
	Agent            string    `json:"agent"`
	Report           string    `json:"report,omitempty"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	SourceURLs       []string  `json:"source_urls,omitempty"`
	SubQueries       []string  `json:"sub_queries,omitempty"`
	PDFPath          string    `json:"pdf_path,omitempty"`
	DocxPath         string    `json:"docx_path,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// ResearchRunListResponse pages through archived runs.
type ResearchRunListResponse struct {
	Runs  []ResearchRunResponse `json:"runs"`
	Total int64                 `json:"total"`
}
