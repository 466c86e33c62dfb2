package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/encode"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio sink.
type Input struct {
	URL       string `fishgrid:"url"`
	Namespace string `fishgrid:"namespace,optional"`
	// EmitEvent carries the document; defaults to "document".
	EmitEvent string `fishgrid:"emit_event,optional"`
	// AckEvent, when set, is awaited after emitting. Without it delivery is
	// best-effort: the event is handed to the connected socket and the client
	// disconnects right away, so a server that drops the connection may never
	// see it.
	AckEvent           string `fishgrid:"ack_event,optional"`
	Timeout            string `fishgrid:"timeout,optional"`
	InsecureSkipVerify bool   `fishgrid:"insecure_skip_verify,optional"`
}

// Payload is the message emitted for each document.
type Payload struct {
	Kind   string          `json:"kind"`
	Job    string          `json:"job"`
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// Publish connects to a socket.io server and emits the document. Without
// AckEvent it returns as soon as the event is queued on the connected socket;
// with AckEvent it returns only after the server replies with that event.
func Publish(ctx context.Context, doc *registry.Document, input *Input) error {
	emitEvent := input.EmitEvent
	if emitEvent == "" {
		emitEvent = "document"
	}
	namespace := input.Namespace
	if namespace == "" {
		namespace = "/"
	}
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", input.URL, "emitEvent", emitEvent, "ackEvent", input.AckEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		if input.Timeout != "" {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		}
		timeout = 10 * time.Second
	}

	data, err := encode.JSON(doc.Value)
	if err != nil {
		return err
	}
	payload := &Payload{Kind: doc.Kind, Job: doc.Job, Source: doc.Source, Data: data}
	var message map[string]any
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &message); err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	done := make(chan error, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", namespace, "sid", io.Id())
		logger.Info("Emitting document", "event", emitEvent, "job", doc.Job, "bytes", len(data))
		io.Emit(emitEvent, message)
		if input.AckEvent == "" {
			finish(nil)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				finish(err)
				return
			}
		}
		finish(fmt.Errorf("connection error"))
	})

	if input.AckEvent != "" {
		io.On(types.EventName(input.AckEvent), func(...any) {
			logger.Info("Acknowledgement received")
			finish(nil)
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", input.AckEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("socketio", &registry.RegisteredSink{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, doc *registry.Document, input any) error {
			return Publish(ctx, doc, input.(*Input))
		},
	})
}
