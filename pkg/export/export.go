package export

import (
	"fmt"
	"os"
	"path/filepath"

	"ai-researcher-be/internal/pkg/logger"
)

// Artifacts holds the written report files for one run, as paths relative
// to the process working directory so they double as static-serve paths.
type Artifacts struct {
	Markdown string `json:"markdown"`
	PDF      string `json:"pdf"`
	DOCX     string `json:"docx"`
}

// Exporter writes finished reports to the output directory in the formats
// clients download.
type Exporter struct {
	outputDir string
	log       logger.ILogger
}

func New(outputDir string, log logger.ILogger) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &Exporter{outputDir: outputDir, log: log}, nil
}

// Export writes the markdown source plus PDF and DOCX renderings named after
// the run id. It fails on the first format that cannot be written.
func (e *Exporter) Export(runID, report string) (*Artifacts, error) {
	base := filepath.Join(e.outputDir, runID)
	artifacts := &Artifacts{
		Markdown: base + ".md",
		PDF:      base + ".pdf",
		DOCX:     base + ".docx",
	}

	if err := os.WriteFile(artifacts.Markdown, []byte(report), 0o644); err != nil {
		return nil, fmt.Errorf("write markdown %s: %w", artifacts.Markdown, err)
	}

	if err := writePDF(artifacts.PDF, report); err != nil {
		return nil, err
	}

	docxFile, err := os.Create(artifacts.DOCX)
	if err != nil {
		return nil, fmt.Errorf("create docx %s: %w", artifacts.DOCX, err)
	}
	if err := writeDocx(docxFile, report); err != nil {
		docxFile.Close()
		return nil, fmt.Errorf("write docx %s: %w", artifacts.DOCX, err)
	}
	if err := docxFile.Close(); err != nil {
		return nil, fmt.Errorf("close docx %s: %w", artifacts.DOCX, err)
	}

	e.log.Info("export", "Report exported", map[string]interface{}{
		"run_id": runID,
		"pdf":    artifacts.PDF,
		"docx":   artifacts.DOCX,
	})
	return artifacts, nil
}
