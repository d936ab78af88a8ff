package fetcher

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSession_GetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"hello"}`))
	}))
	defer server.Close()

	session := NewSession()
	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, resp.Ok)
	assert.Equal(t, 200, resp.Status)
	require.NotNil(t, resp.JSON)
	obj := resp.JSON.(map[string]any)
	assert.Equal(t, "hello", obj["title"])
}

func TestHTTPSession_InvalidJSONIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	session := NewSession()
	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, resp.JSON)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "not json", *resp.Text)
}

func TestHTTPSession_DecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("plain text body"))
		gz.Close()
	}))
	defer server.Close()

	session := NewSession()
	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "plain text body", *resp.Text)
}

func TestHTTPSession_OkReflectsStatusRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	session := NewSession()
	resp, err := session.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, resp.Ok)
	assert.Equal(t, 404, resp.Status)
}
