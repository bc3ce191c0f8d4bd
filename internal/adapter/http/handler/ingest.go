package handler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/internal/service/ingest"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxIngestBodyBytes = 4 << 20

//go:embed schema/position_batch.json
var positionBatchSchema string

type IngestService interface {
	AcceptBatch(ctx context.Context, source types.MessageSource, msgs []models.PositionMessage) (ingest.BatchResult, error)
}

type FeederLimiter interface {
	AllowN(feederID string, n int) bool
}

type Ingest struct {
	service IngestService
	limiter FeederLimiter
	schema  *jsonschema.Schema
	l       logger.Logger
}

func NewIngest(service IngestService, limiter FeederLimiter, l logger.Logger) *Ingest {
	return &Ingest{
		service: service,
		limiter: limiter,
		schema:  jsonschema.MustCompileString("position_batch.json", positionBatchSchema),
		l:       l,
	}
}

// UploadMessages godoc
// @Summary      Upload position messages
// @Description  Accepts a batch of decoded ADS-B messages from a remote feeder
// @Tags         Ingest
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        messages  body      []models.PositionMessage  true  "Position messages"
// @Success      202       {object}  ingest.BatchResult
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      422       {object}  map[string]string
// @Failure      429       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Router       /ingest/messages [post]
func (h *Ingest) UploadMessages(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "upload_messages")

	feeder := models.FeederFromContext(ctx)
	if feeder == nil {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIngestBodyBytes))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			badRequestResponse(w, fmt.Sprintf("body must not be larger than %d bytes", maxBytesError.Limit))
			return
		}
		badRequestResponse(w, "failed to read body")
		return
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		badRequestResponse(w, "body contains badly-formed JSON")
		return
	}

	if err := h.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			failedValidationResponse(w, schemaErrors(verr))
			return
		}
		badRequestResponse(w, err.Error())
		return
	}

	var msgs []models.PositionMessage
	if err := json.Unmarshal(body, &msgs); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	if !h.limiter.AllowN(feeder.ID, len(msgs)) {
		h.l.Warn(ctx, "feeder rate limited", "messages", len(msgs))
		errorCodeResponse(w, types.ErrRateLimited)
		return
	}

	res, err := h.service.AcceptBatch(ctx, types.SourceFeeder, msgs)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to accept batch", err, "accepted", res.Accepted)
		errorCodeResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, res, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "batch accepted", "accepted", res.Accepted, "dropped", res.Dropped)
}

// schemaErrors flattens a validation error tree to instance location -> message.
func schemaErrors(verr *jsonschema.ValidationError) map[string]string {
	out := make(map[string]string)
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out[loc] = e.Message
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}
