package http_client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func testDoc() *registry.Document {
	return &registry.Document{Kind: "report", Job: "cavity", Value: cty.ObjectVal(map[string]cty.Value{"mode": cty.StringVal("compact")})}
}

func TestSend(t *testing.T) {
	var gotMethod, gotBody, gotType, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotToken = r.Header.Get("X-Token")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := Send(context.Background(), srv.Client(), testDoc(), &Input{
		URL:     srv.URL,
		Headers: map[string]string{"X-Token": "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, `{"mode":"compact"}`, gotBody)
}

func TestSend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	testCases := []struct {
		name    string
		input   *Input
		wantErr string
	}{
		{name: "server error", input: &Input{URL: srv.URL, Method: "put"}, wantErr: "500"},
		{name: "bad timeout", input: &Input{URL: srv.URL, Timeout: "soon"}, wantErr: "invalid timeout"},
		{name: "bad url", input: &Input{URL: "http://[::1"}, wantErr: "failed to create request"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Send(context.Background(), srv.Client(), testDoc(), tc.input)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
