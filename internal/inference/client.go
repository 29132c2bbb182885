package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	processFramePath = "/process_frame"
	resetCounterPath = "/reset_counter"

	defaultProcessFrameErr = "failed to process frame"
	defaultResetErr        = "failed to reset counters"

	maxResponseBytes = 4 << 20
)

// Result is the analysis of one frame, relayed as the service returned it.
type Result struct {
	Raw      json.RawMessage
	Duration time.Duration
}

type processFrameRequest struct {
	Image    string `json:"image"`
	Exercise string `json:"exercise"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the pose inference service. There are no retries and no
// client side timeouts, the caller's context decides.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SendFrame(ctx context.Context, image, exercise string) (_ Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "inference.sendFrame")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise", exercise),
		attribute.Int("image.size", len(image)),
	)

	body, err := json.Marshal(processFrameRequest{
		Image:    image,
		Exercise: exercise,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal process frame request: %w", err)
	}

	start := time.Now()
	statusCode, respBytes, err := c.post(ctx, "send frame", processFramePath, "application/json", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("status", statusCode))

	if !isSuccess(statusCode) {
		return Result{}, &ServiceError{
			Op:         "send frame",
			StatusCode: statusCode,
			Message:    errorMessage(respBytes, defaultProcessFrameErr),
		}
	}

	if !json.Valid(respBytes) {
		return Result{}, &ServiceError{
			Op:         "send frame",
			StatusCode: statusCode,
			Message:    "invalid response body",
		}
	}

	return Result{
		Raw:      json.RawMessage(respBytes),
		Duration: time.Since(start),
	}, nil
}

func (c *Client) ResetCounters(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "inference.resetCounters")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	statusCode, respBytes, err := c.post(ctx, "reset counters", resetCounterPath, "", nil)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("status", statusCode))

	if !isSuccess(statusCode) {
		return &ServiceError{
			Op:         "reset counters",
			StatusCode: statusCode,
			Message:    errorMessage(respBytes, defaultResetErr),
		}
	}

	log.Debugln("inference counters reset")
	return nil
}

func (c *Client) post(ctx context.Context, op, path, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("%s: close response body: %s", op, err)
		}
	}()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	return resp.StatusCode, respBytes, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// errorMessage extracts the "error" field of a failure body.
func errorMessage(body []byte, fallback string) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fallback
	}
	return errResp.Error
}
