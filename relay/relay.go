// Package relay provides the HTTP paraphrase relay: a single route that turns a
// sentence into an instruction prompt, calls the configured provider and returns
// the generated rewordings verbatim.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/pkg/llm"
	"github.com/papercomputeco/rephrase/pkg/mcptool"
	"github.com/papercomputeco/rephrase/pkg/paraphrase"
	"github.com/papercomputeco/rephrase/pkg/provider"
)

// Messages returned in error bodies.
const (
	msgSentenceRequired = "Sentence is required"
	msgInvalidBody      = "invalid request body"
	msgInternal         = "internal error"
)

// Relay is the paraphrase relay server. It holds no per-request state: every
// request is validated, forwarded and answered independently.
type Relay struct {
	config      Config
	paraphraser paraphrase.Paraphraser
	logger      *zap.Logger
	server      *fiber.App
}

// New creates a new Relay serving p.
func New(config Config, p paraphrase.Paraphraser, logger *zap.Logger) (*Relay, error) {
	if p == nil {
		return nil, errors.New("relay: nil paraphraser")
	}

	r := &Relay{
		config:      config,
		paraphraser: p,
		logger:      logger,
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          r.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(config.AllowOrigins),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Post("/api/paraphrase", r.handleParaphrase)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{
			"status":   "ok",
			"provider": r.paraphraser.ProviderName(),
		})
	})

	version := config.Version
	if version == "" {
		version = "dev"
	}
	mcpServer := mcptool.NewServer(p, version, logger)
	app.All("/mcp", adaptor.HTTPHandler(mcptool.Handler(mcpServer)))

	r.server = app
	return r, nil
}

// Run starts the relay on the configured listening address.
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		zap.String("listen", r.config.ListenAddr),
		zap.String("provider", r.paraphraser.ProviderName()),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay on an existing listener.
func (r *Relay) RunWithListener(ln net.Listener) error {
	r.logger.Info("starting relay server",
		zap.String("listen", ln.Addr().String()),
		zap.String("provider", r.paraphraser.ProviderName()),
	)

	return r.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (r *Relay) Shutdown() error {
	return r.server.Shutdown()
}

// handleParaphrase relays one sentence to the provider.
//
// The upstream call is detached from the caller's connection: if the client
// goes away the provider call still runs to completion.
func (r *Relay) handleParaphrase(c *fiber.Ctx) error {
	sentence, err := decodeSentence(c.Body())
	if err != nil {
		r.logger.Debug("rejecting malformed request body",
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: msgInvalidBody})
	}

	text, err := r.paraphraser.Paraphrase(context.WithoutCancel(c.UserContext()), sentence)
	if err != nil {
		status, resp := r.errorResponse(err)
		if status >= fiber.StatusInternalServerError {
			r.logger.Error("paraphrase request failed",
				zap.String("request_id", requestID(c)),
				zap.String("provider", r.paraphraser.ProviderName()),
				zap.Error(err),
				zap.ByteString("details", resp.Details),
			)
		} else {
			r.logger.Debug("rejecting paraphrase request",
				zap.String("request_id", requestID(c)),
				zap.String("reason", resp.Error),
			)
		}
		return c.Status(status).JSON(resp)
	}

	r.logger.Info("paraphrase request served",
		zap.String("request_id", requestID(c)),
		zap.Int("size", len(text)),
	)

	return c.JSON(llm.ParaphraseResponse{Paraphrases: text})
}

// errorResponse maps a paraphrase failure to a status and JSON body. Every
// upstream failure class maps to the same 500; only bad input is a 400.
func (r *Relay) errorResponse(err error) (int, llm.ErrorResponse) {
	if errors.Is(err, paraphrase.ErrSentenceRequired) {
		return fiber.StatusBadRequest, llm.ErrorResponse{Error: msgSentenceRequired}
	}

	var missing *provider.MissingCredentialError
	if errors.As(err, &missing) {
		return fiber.StatusInternalServerError, llm.ErrorResponse{Error: "Server is missing " + missing.EnvVar}
	}

	var upstream *provider.UpstreamError
	if errors.As(err, &upstream) {
		return fiber.StatusInternalServerError, llm.ErrorResponse{
			Error:   "Failed to call " + upstream.Provider + " API",
			Details: upstream.Details,
		}
	}

	return fiber.StatusInternalServerError, llm.ErrorResponse{
		Error: "Failed to call " + r.paraphraser.ProviderName() + " API",
	}
}

// handleError renders errors returned by handlers and middleware (including
// recovered panics and unknown routes) as JSON.
func (r *Relay) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		r.logger.Error("unhandled request error",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(llm.ErrorResponse{Error: msg})
}

// decodeSentence reads the sentence from a request body. An empty body and the
// falsy JSON values null, false and 0 count as no sentence; any other
// non-string value is an error.
func decodeSentence(body []byte) (string, error) {
	if len(body) == 0 {
		return "", nil
	}

	var req struct {
		Sentence json.RawMessage `json:"sentence"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return "", err
	}
	if len(req.Sentence) == 0 {
		return "", nil
	}

	var sentence string
	if err := json.Unmarshal(req.Sentence, &sentence); err == nil {
		return sentence, nil
	}
	if isFalsy(req.Sentence) {
		return "", nil
	}
	return "", fmt.Errorf("sentence must be a string, got %s", req.Sentence)
}

func isFalsy(v json.RawMessage) bool {
	var b bool
	if json.Unmarshal(v, &b) == nil {
		return !b
	}
	var n float64
	if json.Unmarshal(v, &n) == nil {
		return n == 0
	}
	return false
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
