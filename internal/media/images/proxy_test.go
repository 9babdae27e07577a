package images

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyClient_Upload(t *testing.T) {
	var gotName string
	var gotData []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotName = header.Filename
		gotData, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"url":"https://img.example/x.jpg","delete_url":"https://img.example/del/x"}`)
	}))
	defer srv.Close()

	client := NewProxyClient(srv.URL, srv.Client(), nil)
	ref, err := client.Upload(context.Background(), "x.jpg", []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "https://img.example/x.jpg", ref.URL)
	assert.Equal(t, "https://img.example/del/x", ref.DeleteURL)
	assert.Equal(t, "x.jpg", gotName)
	assert.Equal(t, []byte("jpeg"), gotData)
}

func TestProxyClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusBadGateway, "upstream down", "returned 502"},
		{"bad json", http.StatusOK, "{", "decode proxy response"},
		{"missing url", http.StatusOK, `{"delete_url":"x"}`, "no url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewProxyClient(srv.URL, nil, nil).Upload(context.Background(), "x.jpg", []byte("jpeg"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProxyClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProxyClient(srv.URL, nil, nil).Upload(ctx, "x.jpg", []byte("jpeg"))
	assert.ErrorIs(t, err, context.Canceled)
}
