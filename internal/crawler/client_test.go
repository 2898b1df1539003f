package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request without User-Agent")
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestScraper_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "html page", status: http.StatusOK, body: registryPage},
		{name: "not found", status: http.StatusNotFound, body: "<html></html>", wantErr: ErrUnexpectedStatusCode},
		{name: "server error", status: http.StatusInternalServerError, body: "", wantErr: ErrUnexpectedStatusCode},
		{name: "empty body", status: http.StatusOK, body: "", wantErr: ErrEmptyBody},
		{name: "json body", status: http.StatusOK, body: `{"error":"maintenance"}`, wantErr: ErrUnexpectedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRegistryServer(t, tt.status, tt.body)

			body, err := NewScraperWithConfig("", 5*time.Second).Fetch(context.Background(), server.URL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestScraper_Fetch_ContentTypeHeader(t *testing.T) {
	const table = `<table class="table"><tr><td>01/02/2022</td></tr></table>`

	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     error
	}{
		{name: "meta first", contentType: "text/html; charset=utf-8", body: `<meta charset="utf-8">` + table},
		{name: "xml prolog", contentType: "text/html", body: `<?xml version="1.0" encoding="utf-8"?><!DOCTYPE html><html><body>` + table + `</body></html>`},
		{name: "xhtml", contentType: "application/xhtml+xml", body: `<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><body>` + table + `</body></html>`},
		{name: "generic header sniffs html", contentType: "application/octet-stream", body: registryPage},
		{name: "json header", contentType: "application/json", body: registryPage, wantErr: ErrUnexpectedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			body, err := NewScraper().Fetch(context.Background(), server.URL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestClient_Crawl_MetaFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<meta charset="utf-8"><table class="table"><tr><td>01/02/2022</td><td>SP</td></tr></table>`))
	}))
	defer server.Close()

	records, err := NewClient().Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SP", records[0].State)
}

func TestScraper_Fetch_SendsUserAgent(t *testing.T) {
	var got string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(registryPage))
	}))
	defer server.Close()

	_, err := NewScraperWithConfig("apdados-test/1.0", 0).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "apdados-test/1.0", got)
}

func TestClient_Crawl(t *testing.T) {
	server := newRegistryServer(t, http.StatusOK, registryPage)

	records, err := NewClient().Crawl(context.Background(), server.URL+"/violacoes")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, server.URL+"/violacoes/1", records[0].Link)
}

func TestClient_Crawl_FetchError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantStage string
		wantErr   error
	}{
		{"status", http.StatusBadGateway, "<html></html>", StageRequest, ErrUnexpectedStatusCode},
		{"missing table", http.StatusOK, "<html><body><p>fora do ar</p></body></html>", StageParse, ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRegistryServer(t, tt.status, tt.body)

			_, err := NewClient().Crawl(context.Background(), server.URL)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr), "error = %v, want *FetchError", err)
			assert.Equal(t, tt.wantStage, fetchErr.Stage)
			assert.Equal(t, server.URL, fetchErr.URL)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Crawl_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient().Crawl(context.Background(), url)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, StageRequest, fetchErr.Stage)
}
