package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistral_Complete(t *testing.T) {
	var got mistralRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"  {\"score\":0.9}\n"}}]}`))
	}))
	defer srv.Close()

	m := NewMistral("key", "mistral-small-latest", srv.URL, srv.Client())
	out, err := m.Complete(context.Background(), Request{
		System:      "system",
		Prompt:      "prompt",
		Temperature: 0.3,
		MaxTokens:   150,
		JSON:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"score":0.9}`, out)
	assert.Equal(t, "mistral-small-latest", got.Model)
	assert.Equal(t, []mistralMessage{{Role: "system", Content: "system"}, {Role: "user", Content: "prompt"}}, got.Messages)
	assert.Equal(t, 150, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestMistral_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"non-200": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		},
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := NewMistral("key", "m", srv.URL, srv.Client()).Complete(context.Background(), Request{Prompt: "p"})
			assert.Error(t, err)
		})
	}
}

func TestMistral_RespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewMistral("key", "m", srv.URL, srv.Client()).Complete(ctx, Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDisabled(t *testing.T) {
	_, err := disabled{}.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrDisabled)
}
