package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-researcher-be/internal/dto"
	"ai-researcher-be/internal/model"
	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/internal/repository"
	"ai-researcher-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IArchiveService interface {
	Consume(ctx context.Context) error
	History(ctx context.Context, limit, offset int) (*dto.ResearchRunListResponse, error)
	Detail(ctx context.Context, id uuid.UUID) (*dto.ResearchRunResponse, error)
}

// archiveService persists completed runs off the hot path. The research
// session publishes a RESEARCH_COMPLETED event and moves on; this consumer
// writes the archive row whenever the database is reachable.
type archiveService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	repo      repository.ResearchRunRepository
	log       logger.ILogger
}

func NewArchiveService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo repository.ResearchRunRepository,
	log logger.ILogger,
) IArchiveService {
	return &archiveService{
		pubSub:    pubSub,
		topicName: topicName,
		repo:      repo,
		log:       log,
	}
}

func (s *archiveService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *archiveService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.ResearchCompleted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.log.Error("archive", "Failed to unmarshal research event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // poison message, retrying cannot fix it
		return
	}

	runID, err := uuid.Parse(event.RunID)
	if err != nil {
		s.log.Error("archive", "Research event carries invalid run id", map[string]interface{}{
			"run_id": event.RunID,
			"error":  err.Error(),
		})
		msg.Ack()
		return
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	run := &model.ResearchRun{
		ID:               runID,
		Query:            event.Query,
		ReportType:       event.ReportType,
		Agent:            event.Agent,
		Report:           event.Report,
		Model:            event.Model,
		PromptTokens:     event.PromptTokens,
		CompletionTokens: event.CompletionTokens,
		SourceURLs:       event.SourceURLs,
		SubQueries:       event.SubQueries,
		PDFPath:          event.PDFPath,
		DocxPath:         event.DocxPath,
		DurationMs:       event.DurationMs,
		CreatedAt:        createdAt,
	}

	if err := s.repo.Create(ctx, run); err != nil {
		s.log.Error("archive", "Failed to persist research run", map[string]interface{}{
			"run_id": event.RunID,
			"error":  err.Error(),
		})
		msg.Nack() // storage hiccup, let the subscriber redeliver
		return
	}

	s.log.Info("archive", "Research run archived", map[string]interface{}{
		"run_id": event.RunID,
		"query":  event.Query,
	})
	msg.Ack()
}

func (s *archiveService) History(ctx context.Context, limit, offset int) (*dto.ResearchRunListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := &dto.ResearchRunListResponse{
		Runs:  make([]dto.ResearchRunResponse, 0, len(runs)),
		Total: total,
	}
	for _, run := range runs {
		resp := toRunResponse(&run)
		resp.Report = "" // list view stays light, the detail endpoint has it
		out.Runs = append(out.Runs, resp)
	}
	return out, nil
}

func (s *archiveService) Detail(ctx context.Context, id uuid.UUID) (*dto.ResearchRunResponse, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	resp := toRunResponse(run)
	return &resp, nil
}

func toRunResponse(run *model.ResearchRun) dto.ResearchRunResponse {
	return dto.ResearchRunResponse{
		ID:               run.ID,
		Query:            run.Query,
		ReportType:       run.ReportType,
		Agent:            run.Agent,
		Report:           run.Report,
		Model:            run.Model,
		PromptTokens:     run.PromptTokens,
		CompletionTokens: run.CompletionTokens,
		SourceURLs:       run.SourceURLs,
		SubQueries:       run.SubQueries,
		PDFPath:          run.PDFPath,
		DocxPath:         run.DocxPath,
		DurationMs:       run.DurationMs,
		CreatedAt:        run.CreatedAt,
	}
}
