package http_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client overrides the shared client, mainly for tests.
	Client *http.Client
}

// Input defines the arguments for the http sink.
type Input struct {
	URL     string            `fishgrid:"url"`
	Method  string            `fishgrid:"method,optional"`
	Headers map[string]string `fishgrid:"headers,optional"`
	Timeout string            `fishgrid:"timeout,optional"`
}

// Send posts the document as JSON to input.URL. Any non-2xx response is an
// error.
func Send(ctx context.Context, client *http.Client, doc *registry.Document, input *Input) error {
	method := strings.ToUpper(input.Method)
	if method == "" {
		method = http.MethodPost
	}
	logger := ctxlog.FromContext(ctx).With("sink", "http", "job", doc.Job, "method", method, "url", input.URL)

	timeout := defaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		timeout = d
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := encode.JSON(doc.Value)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, input.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range input.Headers {
		req.Header.Set(k, v)
	}

	logger.Info("Sending document.", "bytes", len(body))
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed with status: %s", resp.Status)
	}
	logger.Info("Received HTTP response", "status", resp.Status)
	return nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = newClient()
	}
	r.RegisterSink("http", &registry.RegisteredSink{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			return Send(ctx, client, doc, input.(*Input))
		},
	})
}
