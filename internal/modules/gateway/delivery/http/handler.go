// Package http implements the ingest gateway's single endpoint (spec §4.6),
// grounded on the teacher's booking handler: one anchor log on receipt, lean
// orchestration, errors bubbled to the global error handler untouched.
package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/infrastructure/validator"
	"agentstack/pipeline/internal/pkg/apperror"
	"agentstack/pipeline/internal/pkg/response"
	"agentstack/pipeline/internal/sdk/span"
)

const (
	handlerName = "http:handler.gateway"
	apiKeyHdr   = "X-API-Key"
)

// AuthVerifier resolves an API key to a project ID, or "" if unrecognized.
// Satisfied by authcache.Cache.
type AuthVerifier interface {
	Verify(ctx context.Context, apiKey string) (string, error)
}

// ingestRequest accepts any of the three shapes spec §4.6 step 3 allows: a
// bare array, a single object, or an {"spans": [...]} envelope.
type ingestRequest struct {
	Spans []span.Record `json:"spans"`
}

// UnmarshalJSON implements the three-shape decode itself rather than relying
// on a custom fiber body parser, keeping the flexibility local to the one
// endpoint that needs it.
func (r *ingestRequest) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Spans []span.Record `json:"spans"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Spans != nil {
		r.Spans = envelope.Spans
		return nil
	}

	var arr []span.Record
	if err := json.Unmarshal(data, &arr); err == nil {
		r.Spans = arr
		return nil
	}

	var single span.Record
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.Spans = []span.Record{single}
	return nil
}

type Handler struct {
	Cfg   *config.GatewayConfig
	Log   logger.Logger
	Val   validator.Validator
	Auth  AuthVerifier
	DLog  *durablelog.Log
	Topic string
}

func NewHandler(cfg *config.GatewayConfig, log logger.Logger, val validator.Validator, auth AuthVerifier, dlog *durablelog.Log, topic string) *Handler {
	return &Handler{Cfg: cfg, Log: log, Val: val, Auth: auth, DLog: dlog, Topic: topic}
}

// Ingest implements POST /v1/traces.
func (h *Handler) Ingest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "Ingest")

	// 1. Body size cap (spec §4.6 step 1).
	body := c.Body()
	if int64(len(body)) > h.Cfg.MaxBodyBytes {
		return apperror.ErrCodePayloadTooLarge.WithError(nil)
	}

	// 2. Resolve API key (step 2).
	apiKey := c.Get(apiKeyHdr)
	if apiKey == "" {
		return apperror.ErrCodeUnauthorized.WithError(nil)
	}
	projectID, err := h.Auth.Verify(ctx, apiKey)
	if err != nil {
		return err
	}
	if projectID == "" {
		return apperror.ErrCodeUnauthorized.WithError(nil)
	}

	// 3. Decode JSON, accepting any of the three shapes (step 3).
	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperror.ErrCodeMalformedRequest.WithError(err)
	}

	// 3b. Reject (don't truncate) a batch over the configured span cap (spec
	// §6, mirroring the original TraceIngestionPayload's max_length=1000).
	if h.Cfg.MaxSpansPerBatch > 0 && len(req.Spans) > h.Cfg.MaxSpansPerBatch {
		log.WithField("batch_size", len(req.Spans)).Warn("gateway: batch exceeds max_spans_per_batch")
		return apperror.ErrCodeValidation.WithError(nil)
	}

	// 4-5. Validate each span, dropping invalid ones with a warning; inject
	// project_id into each accepted span.
	accepted := make([]span.Record, 0, len(req.Spans))
	for _, rec := range req.Spans {
		if err := h.Val.Validate(&rec); err != nil {
			log.WithField("span_id", rec.SpanID).Warn("gateway: dropping invalid span: " + err.Error())
			continue
		}
		accepted = append(accepted, rec)
	}

	log.WithFields(map[string]any{
		"project_id":   projectID,
		"batch_size":   len(req.Spans),
		"accepted_size": len(accepted),
	}).Info("request received")

	// 6. Append each accepted span as its own entry on spans.ingest.
	for _, rec := range accepted {
		payload, err := json.Marshal(rec)
		if err != nil {
			return apperror.ErrCodeInternalError.WithError(err)
		}
		if _, err := h.DLog.Append(ctx, h.Topic, map[string]any{
			"project_id": projectID,
			"payload":    string(payload),
		}); err != nil {
			return apperror.ErrCodeInternalError.WithError(err)
		}
	}

	// 7. Respond 202.
	return response.NewHttp(c).Accepted(response.Http{
		Message: "accepted",
		Data: fiber.Map{
			"accepted":     true,
			"queued_count": len(accepted),
			"project_id":   projectID,
		},
	})
}
