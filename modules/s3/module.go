package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	Client *http.Client
}

// httpClient is shared by all S3 sink executions to reuse TCP connections.
var httpClient = &http.Client{}

// Input defines the arguments for the s3 sink.
type Input struct {
	// UploadURL is a pre-signed PUT URL.
	UploadURL   string `fishgrid:"upload_url"`
	ContentType string `fishgrid:"content_type,optional"`
}

// Upload PUTs the JSON document to a pre-signed URL.
func Upload(ctx context.Context, client *http.Client, doc *registry.Document, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("sink", "s3", "job", doc.Job)

	if !strings.HasPrefix(input.UploadURL, "http://") && !strings.HasPrefix(input.UploadURL, "https://") {
		return fmt.Errorf("upload_url must be an http(s) URL, got %q", input.UploadURL)
	}
	body, err := encode.JSON(doc.Value)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.UploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create S3 upload request: %w", err)
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	logger.Info("Uploading document to S3", "size", len(body), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded document", "status", resp.Status)
	return nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = httpClient
	}
	r.RegisterSink("s3", &registry.RegisteredSink{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			return Upload(ctx, client, doc, input.(*Input))
		},
	})
}
