package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-researcher-be/internal/dto"
	"ai-researcher-be/internal/pkg/serverutils"
	"ai-researcher-be/internal/service"
	internalWS "ai-researcher-be/internal/websocket"
	"ai-researcher-be/pkg/researcher"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubResearch struct{}

func (stubResearch) RunResearch(context.Context, researcher.Stream, *dto.StartResearchRequest) error {
	return nil
}

type stubArchive struct {
	list   *dto.ResearchRunListResponse
	detail *dto.ResearchRunResponse
}

func (s *stubArchive) Consume(context.Context) error { return nil }

func (s *stubArchive) History(_ context.Context, limit, offset int) (*dto.ResearchRunListResponse, error) {
	return s.list, nil
}

func (s *stubArchive) Detail(_ context.Context, id uuid.UUID) (*dto.ResearchRunResponse, error) {
	return s.detail, nil
}

func newTestApp(archive service.IArchiveService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())

	ctl := NewResearchController(stubResearch{}, archive, internalWS.NewManager(nopLogger{}), nopLogger{})
	ctl.RegisterRoutes(app.Group("/api"))
	return app
}

func TestParseStartCommand(t *testing.T) {
	req, err := parseStartCommand(`start {"task": "why do cats purr", "report_type": "research_report", "source_urls": ["https://cats.example"], "total_words": 1500}`)
	require.NoError(t, err)

	assert.Equal(t, "why do cats purr", req.Task)
	assert.Equal(t, "research_report", req.ReportType)
	assert.Equal(t, []string{"https://cats.example"}, req.SourceURLs)
	assert.Equal(t, 1500, req.TotalWords)
}

func TestParseStartCommandRejectsUnknownCommand(t *testing.T) {
	for _, frame := range []string{
		`stop {"task": "x"}`,
		`start{"task": "x"}`,
		`start`,
		``,
	} {
		_, err := parseStartCommand(frame)
		assert.Error(t, err, "frame %q", frame)
	}
}

func TestParseStartCommandRejectsMalformedJSON(t *testing.T) {
	_, err := parseStartCommand(`start {oops`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed start command")
}

func TestParseStartCommandRequiresTaskAndReportType(t *testing.T) {
	_, err := parseStartCommand(`start {"report_type": "research_report"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task")

	_, err = parseStartCommand(`start {"task": "why do cats purr"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ReportType")
}

func TestHistoryEndpoint(t *testing.T) {
	archive := &stubArchive{
		list: &dto.ResearchRunListResponse{
			Runs:  []dto.ResearchRunResponse{{ID: uuid.New(), Query: "archived question"}},
			Total: 1,
		},
	}
	app := newTestApp(archive)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/research/v1/history?limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool                        `json:"success"`
		Data    dto.ResearchRunListResponse `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &envelope))

	assert.True(t, envelope.Success)
	require.Len(t, envelope.Data.Runs, 1)
	assert.Equal(t, "archived question", envelope.Data.Runs[0].Query)
	assert.Equal(t, int64(1), envelope.Data.Total)
}

func TestHistoryEndpointWithoutArchive(t *testing.T) {
	app := newTestApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/research/v1/history", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestDetailEndpoint(t *testing.T) {
	id := uuid.New()
	archive := &stubArchive{detail: &dto.ResearchRunResponse{ID: id, Query: "archived question", Report: "# Report"}}
	app := newTestApp(archive)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/research/v1/history/"+id.String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool                    `json:"success"`
		Data    dto.ResearchRunResponse `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "# Report", envelope.Data.Report)
}

func TestDetailEndpointNotFound(t *testing.T) {
	app := newTestApp(&stubArchive{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/research/v1/history/"+uuid.New().String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDetailEndpointRejectsBadID(t *testing.T) {
	app := newTestApp(&stubArchive{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/research/v1/history/not-a-uuid", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
