// Package feed fetches the aircraft snapshot the map-service polls.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/dustin/go-humanize"
)

const defaultMaxBodyBytes = 8 << 20

type Client struct {
	url          string
	maxBodyBytes int64
	http         *http.Client
	l            logger.Logger
}

// NewClient creates a snapshot client for url. The http client carries no
// timeout; callers bound a fetch through its context.
func NewClient(url string, maxBodyBytes int64, l logger.Logger) *Client {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Client{
		url:          url,
		maxBodyBytes: maxBodyBytes,
		http:         &http.Client{},
		l:            l,
	}
}

// Fetch downloads and decodes one snapshot. Elements that do not decode are
// returned as records without an id.
func (c *Client) Fetch(ctx context.Context) ([]models.EntityRecord, error) {
	const op = "feed.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, types.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, types.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, types.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, types.ErrFetchFailed, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%s: %w: body exceeds %s", op, types.ErrMalformedSnapshot, humanize.IBytes(uint64(c.maxBodyBytes)))
	}

	// null decodes into a nil slice without error
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, fmt.Errorf("%s: %w: body is not a JSON array", op, types.ErrMalformedSnapshot)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, types.ErrMalformedSnapshot, err)
	}

	records := make([]models.EntityRecord, 0, len(elements))
	for _, raw := range elements {
		records = append(records, toRecord(raw))
	}

	c.l.Debug(ctx, "snapshot fetched",
		"size", humanize.Bytes(uint64(len(body))),
		"records", len(records),
		"took", time.Since(start).String(),
	)

	return records, nil
}
