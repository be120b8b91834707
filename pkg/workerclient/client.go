// Package workerclient is the outbound HTTP client an Executor uses to hand
// a job's payload to a remote worker and retrieve its result. Grounded on
// pkg/console/client.go's status-code-switch-to-typed-error convention, and
// on app/services/mineru_client.py's submit_task/health_check behavior: a
// multipart POST to /file_parse carrying the decoded document plus the
// remaining payload as form fields, with "auto"/empty backend substituted
// for the worker's own configured backend.
package workerclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

const (
	parsePath = "/file_parse"

	fileFieldKey = "file_base64"
	nameFieldKey = "file_name"
	backendKey   = "backend"
)

// Client executes jobs against a single worker's parsing endpoint.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient}
}

// Execute submits payload to worker and returns the decoded result. The
// caller controls the deadline via ctx; Execute performs no timeout of its
// own, unlike the Python original's two-layered httpx+asyncio.wait_for
// timeout — a single context deadline is sufficient here.
func (c *Client) Execute(ctx context.Context, worker *models.Worker, payload models.Payload, fileName string) (map[string]any, error) {
	body, contentType, err := encodeMultipart(worker, payload, fileName)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, worker.URL+parsePath, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	zap.S().Named("workerclient").Debugw("executing job", "worker_id", worker.ID, "url", worker.URL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dispatcherrors.NewExecutionTimeoutError()
		}
		return nil, dispatcherrors.NewRemoteError(0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dispatcherrors.NewRemoteError(resp.StatusCode, err.Error())
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &result); err != nil {
				return nil, fmt.Errorf("decode worker response: %w", err)
			}
		}
		return result, nil
	default:
		return nil, dispatcherrors.NewRemoteError(resp.StatusCode, string(raw))
	}
}

// HealthCheck probes worker's readiness endpoint. The original implementation
// is split across two inconsistent checks (/health in instance_pool.py,
// /openapi.json in mineru_client.py); either is acceptable here, so the
// pool's own HTTPProber is the canonical implementation and this method
// exists for callers that want it bundled with Execute's transport.
func (c *Client) HealthCheck(ctx context.Context, worker *models.Worker) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, worker.URL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dispatcherrors.NewRemoteError(0, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return dispatcherrors.NewRemoteError(resp.StatusCode, "health check failed")
	}
	return nil
}

// encodeMultipart builds the /file_parse request body: the decoded document
// under "files", backend substituted if the payload requests "auto" or
// leaves it empty, and every remaining payload key as a form field.
func encodeMultipart(worker *models.Worker, payload models.Payload, fileName string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	encoded, _ := payload[fileFieldKey].(string)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode file_base64: %w", err)
	}

	part, err := w.CreateFormFile("files", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(raw); err != nil {
		return nil, "", err
	}

	backend := payload.Backend()
	if backend == "" || backend == "auto" {
		backend = worker.Backend
	}
	if err := w.WriteField(backendKey, backend); err != nil {
		return nil, "", err
	}

	for k, v := range payload {
		if k == fileFieldKey || k == nameFieldKey || k == backendKey {
			continue
		}
		if err := w.WriteField(k, fmt.Sprintf("%v", v)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
