package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func TestUpload(t *testing.T) {
	var gotMethod, gotBody string
	var gotLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotLength = r.ContentLength
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	doc := &registry.Document{Job: "cavity", Value: cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(3)})}
	require.NoError(t, Upload(context.Background(), srv.Client(), doc, &Input{UploadURL: srv.URL + "/bucket/key?sig=1"}))
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, `{"n":3}`, gotBody)
	require.Equal(t, int64(len(gotBody)), gotLength)
}

func TestUpload_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	doc := &registry.Document{Job: "cavity", Value: cty.EmptyObjectVal}

	err := Upload(context.Background(), srv.Client(), doc, &Input{UploadURL: srv.URL})
	require.ErrorContains(t, err, "S3 upload failed with status: 403")

	err = Upload(context.Background(), srv.Client(), doc, &Input{UploadURL: "s3://bucket/key"})
	require.ErrorContains(t, err, "must be an http(s) URL")
}
