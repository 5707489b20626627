package textgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/apperr"
	"procurement/internal/config"
	"procurement/internal/textgen"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		var p textgen.Prompt
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "justification", p.Task)
		assert.Equal(t, "Glucometer", p.Inputs["item_name"])
		_, _ = w.Write([]byte(`{"resultText":"  Needed for screening.  "}`))
	}))
	defer srv.Close()

	c := textgen.NewClient(config.TextGenConfig{URL: srv.URL, APIKey: "key-1", Timeout: time.Second})
	res, err := c.Generate(context.Background(), textgen.Prompt{Task: "justification", Inputs: map[string]any{"item_name": "Glucometer"}})
	require.NoError(t, err)
	assert.Equal(t, "Needed for screening.", res.Text)
}

func TestGenerateFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		},
		"missing output": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
		"blank output": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"resultText":"   "}`))
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			c := textgen.NewClient(config.TextGenConfig{URL: srv.URL, Timeout: time.Second})
			_, err := c.Generate(context.Background(), textgen.Prompt{Task: "forecast"})
			assert.True(t, errors.Is(err, apperr.ErrUpstream), "got %v", err)
		})
	}

	_, err := textgen.NewClient(config.TextGenConfig{}).Generate(context.Background(), textgen.Prompt{})
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}
