package events

import "time"

const (
	ResearchCompletedType = "RESEARCH_COMPLETED"

	// ResearchCompletedTopic is the pub/sub topic completed runs are
	// announced on.
	ResearchCompletedTopic = "research.completed"
)

// ResearchCompleted is published once a research run has produced its report
// and the export files are on disk. It is the payload the archive consumer
// persists; transient session state (queues, visited urls) never leaves the run.
type ResearchCompleted struct {
	RunID            string    `json:"run_id"`
	Query            string    `json:"query"`
	ReportType       string    `json:"report_type"`
	Agent            string    `json:"agent"`
	Report           string    `json:"report"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	SourceURLs       []string  `json:"source_urls"`
	SubQueries       []string  `json:"sub_queries"`
	PDFPath          string    `json:"pdf_path"`
	DocxPath         string    `json:"docx_path"`
	DurationMs       int64     `json:"duration_ms"`
	OccurredAt       time.Time `json:"occurred_at"`
}

func (e ResearchCompleted) EventType() string {
	return ResearchCompletedType
}

func (e ResearchCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":            e.RunID,
		"query":             e.Query,
		"report_type":       e.ReportType,
		"agent":             e.Agent,
		"model":             e.Model,
		"prompt_tokens":     e.PromptTokens,
		"completion_tokens": e.CompletionTokens,
		"pdf_path":          e.PDFPath,
		"docx_path":         e.DocxPath,
		"duration_ms":       e.DurationMs,
	}
}

func (e ResearchCompleted) Timestamp() time.Time {
	return e.OccurredAt
}
