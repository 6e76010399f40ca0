package middleserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/summarizer/worker/fetch-todo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SIG", body["signature"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"repo_owner": "acme", "repo_name": "widgets"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.PostJSON(context.Background(), "/summarizer/worker/fetch-todo",
		map[string]string{"signature": "SIG", "stakingKey": "SK"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.Success())
	assert.Equal(t, "acme", resp.Data()["repo_owner"])
}

func TestPostJSONConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"message": "no eligible todos"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.PostJSON(context.Background(), "/x", map[string]string{})
	require.NoError(t, err, "a 409 status is not a transport error")

	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "no eligible todos", resp.Message("default"))
	assert.False(t, resp.Success())
}

func TestPostJSONNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.PostJSON(context.Background(), "/x", map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Nil(t, resp.Body)
	assert.Equal(t, "internal server error", string(resp.Raw))
	assert.Equal(t, "fallback", resp.Message("fallback"))
}

func TestPostJSONTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.PostJSON(context.Background(), "/x", map[string]string{})
	require.Error(t, err)
}

func TestPostJSONContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	_, err := client.PostJSON(ctx, "/x", map[string]string{})
	require.Error(t, err)
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Status: 500, Body: "boom"}
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")

	bare := &StatusError{Status: 503}
	assert.Equal(t, "unexpected status 503", bare.Error())
}
