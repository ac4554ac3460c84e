package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-researcher-be/internal/dto"
	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/internal/pkg/serverutils"
	"ai-researcher-be/internal/service"
	internalWS "ai-researcher-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const startCommandPrefix = "start "

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
}

type researchController struct {
	researchService service.IResearchService
	archiveService  service.IArchiveService
	manager         *internalWS.Manager
	logger          logger.ILogger
}

// NewResearchController wires the websocket research endpoint and the run
// archive endpoints. archiveService may be nil when no database is
// configured; the history routes then answer 503.
func NewResearchController(
	researchService service.IResearchService,
	archiveService service.IArchiveService,
	manager *internalWS.Manager,
	log logger.ILogger,
) IResearchController {
	return &researchController{
		researchService: researchService,
		archiveService:  archiveService,
		manager:         manager,
		logger:          log,
	}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1")
	h.Get("history", c.History)
	h.Get("history/:id", c.Detail)
}

// ServeWs upgrades the request and runs the command loop until the client
// goes away.
func (c *researchController) ServeWs(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(c.handleSession)(ctx)
	}
	return fiber.ErrUpgradeRequired
}

// handleSession reads commands one at a time. A run blocks the loop until it
// finishes, so a session executes at most one research task at once; frames
// stream out through the channel's writer while the run is in flight.
func (c *researchController) handleSession(conn *websocket.Conn) {
	sessionID := uuid.New()
	channel := internalWS.NewChannel(conn, c.logger)
	c.manager.Register(sessionID, channel)
	defer func() {
		c.manager.Unregister(sessionID)
		channel.Close()
		<-channel.Done()
	}()

	internalWS.ConfigureSession(conn)

	for {
		if err := internalWS.RefreshReadDeadline(conn); err != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket", "Session read failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
			return
		}

		req, err := parseStartCommand(string(data))
		if err != nil {
			channel.Send("error", err.Error())
			continue
		}

		// The run owns its own lifetime: a client that disconnects
		// mid-run still gets its report exported and archived.
		if err := c.researchService.RunResearch(context.Background(), channel, req); err != nil {
			c.logger.Error("websocket", "Research run failed", map[string]interface{}{
				"session_id": sessionID,
				"task":       req.Task,
				"error":      err.Error(),
			})
			channel.Send("error", err.Error())
		}
	}
}

// parseStartCommand decodes one command frame. A command is the word "start"
// followed by a space and a JSON object.
func parseStartCommand(data string) (*dto.StartResearchRequest, error) {
	payload, ok := strings.CutPrefix(data, startCommandPrefix)
	if !ok {
		return nil, fmt.Errorf("unknown command, expected %q followed by a JSON object", strings.TrimSpace(startCommandPrefix))
	}

	var req dto.StartResearchRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("malformed start command: %w", err)
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *researchController) History(ctx *fiber.Ctx) error {
	if c.archiveService == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Run archive is not configured"))
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.archiveService.History(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list research runs", res))
}

func (c *researchController) Detail(ctx *fiber.Ctx) error {
	if c.archiveService == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Run archive is not configured"))
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid run id"))
	}

	res, err := c.archiveService.Detail(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Research run not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show research run", res))
}
