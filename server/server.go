// Package server exposes the artifact store over HTTP (JSON) and streams
// mutation notifications over a websocket endpoint.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/logging"
	"github.com/hupe1980/inboxmesh/mailer"
	"github.com/hupe1980/inboxmesh/store"
)

// Options configures a Server.
type Options struct {
	// Mailer performs outbound delivery when a draft is sent. Nil means the
	// send endpoint only records the state change.
	Mailer mailer.Mailer

	// From is the envelope sender used for outbound delivery.
	From string

	// Logger receives request and delivery diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Server wires the store's operations to HTTP routes.
type Server struct {
	app    *fiber.App
	store  *store.Store
	mailer mailer.Mailer
	from   string
	logger logging.Logger
}

// New builds the HTTP server around an opened store.
func New(st *store.Store, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		store:  st,
		mailer: opts.Mailer,
		from:   opts.From,
		logger: opts.Logger,
	}

	app := fiber.New(fiber.Config{
		AppName:      "inboxmesh",
		ErrorHandler: s.errorHandler,
	})
	app.Use(fiberrecover.New())

	api := app.Group("/api")
	api.Get("/artifacts", s.handleListArtifacts)
	api.Post("/artifacts", s.handleCreateArtifact)
	api.Get("/artifacts/:id", s.handleGetArtifact)
	api.Patch("/artifacts/:id", s.handleUpdateArtifact)
	api.Delete("/artifacts/:id", s.handleDeleteArtifact)
	api.Post("/artifacts/:id/drafts", s.handleCreateDraft)
	api.Patch("/artifacts/:id/drafts/:draftId", s.handleUpdateDraft)
	api.Post("/artifacts/:id/drafts/:draftId/send", s.handleSendDraft)
	api.Post("/artifacts/:id/emails/:emailId/complete", s.handleMarkEmailComplete)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWebSocket))

	s.app = app
	return s
}

// App exposes the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until Shutdown is called or the listener fails.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.app.ShutdownWithTimeout(time.Until(deadline))
	}
	return s.app.Shutdown()
}

// errorHandler maps store errors to HTTP statuses: unknown ids to 404,
// rejected input to 400, illegal state transitions to 409, persistence
// failures to 503.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
	case errors.Is(err, core.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, core.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, core.ErrPersistence):
		status = fiber.StatusServiceUnavailable
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type createArtifactRequest struct {
	Type     core.ArtifactType `json:"type"`
	Title    string            `json:"title"`
	Emails   []core.Email      `json:"emails"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleCreateArtifact(c *fiber.Ctx) error {
	var req createArtifactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	art, err := s.store.CreateArtifact(req.Type, req.Title, req.Emails, req.Metadata)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(art)
}

func (s *Server) handleGetArtifact(c *fiber.Ctx) error {
	art, err := s.store.GetArtifact(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(art)
}

func (s *Server) handleListArtifacts(c *fiber.Ctx) error {
	return c.JSON(s.store.ListArtifacts())
}

type updateArtifactRequest struct {
	Title    *string           `json:"title"`
	Visible  *bool             `json:"visible"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleUpdateArtifact(c *fiber.Ctx) error {
	var req updateArtifactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	art, err := s.store.UpdateArtifact(c.Params("id"), core.ArtifactUpdate{
		Title:    req.Title,
		Visible:  req.Visible,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.JSON(art)
}

func (s *Server) handleDeleteArtifact(c *fiber.Ctx) error {
	if err := s.store.DeleteArtifact(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type createDraftRequest struct {
	EmailID string `json:"emailId"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

func (s *Server) handleCreateDraft(c *fiber.Ctx) error {
	var req createDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	draft, err := s.store.CreateDraft(c.Params("id"), req.EmailID, req.To, req.Subject, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

type updateDraftRequest struct {
	To      *string           `json:"to"`
	Subject *string           `json:"subject"`
	Content *string           `json:"content"`
	Status  *core.DraftStatus `json:"status"`
}

func (s *Server) handleUpdateDraft(c *fiber.Ctx) error {
	var req updateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	draft, err := s.store.UpdateDraft(c.Params("id"), c.Params("draftId"), core.DraftUpdate{
		To:      req.To,
		Subject: req.Subject,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

type sendDraftResponse struct {
	Draft         core.Draft `json:"draft"`
	Delivered     bool       `json:"delivered"`
	DeliveryError string     `json:"deliveryError,omitempty"`
}

// handleSendDraft records the send in the store first, so the state machine
// stays authoritative, then attempts outbound delivery. A delivery failure is
// reported in the response body, not as a request error: the draft is already
// sent and re-sending must go through a new draft.
func (s *Server) handleSendDraft(c *fiber.Ctx) error {
	draft, err := s.store.SendDraft(c.Params("id"), c.Params("draftId"))
	if err != nil {
		return err
	}
	resp := sendDraftResponse{Draft: draft}
	if s.mailer != nil {
		if err := s.mailer.Send(c.Context(), s.from, draft); err != nil {
			s.logger.Error("outbound delivery failed", "draft_id", draft.ID, "error", err)
			resp.DeliveryError = err.Error()
		} else {
			resp.Delivered = true
		}
	}
	return c.JSON(resp)
}

func (s *Server) handleMarkEmailComplete(c *fiber.Ctx) error {
	if err := s.store.MarkEmailComplete(c.Params("id"), c.Params("emailId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleWebSocket streams every mutation notification to the client as JSON.
// The subscription's bounded queue applies: a client that stops reading loses
// the oldest undelivered events and should re-read artifacts to catch up.
func (s *Server) handleWebSocket(c *websocket.Conn) {
	sub := s.store.Subscribe()
	defer s.store.Unsubscribe(sub)
	defer c.Close()

	s.logger.Debug("websocket subscriber connected", "subscription_id", sub.ID())

	// Drain client frames so closes are noticed while blocked on the queue.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n, ok := <-sub.Notifications():
			if !ok {
				return
			}
			if err := c.WriteJSON(n); err != nil {
				s.logger.Debug("websocket write failed", "subscription_id", sub.ID(), "error", err)
				return
			}
		case <-done:
			return
		}
	}
}
