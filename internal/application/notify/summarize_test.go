package notify

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

func TestOpenAISummarizer_Summarize(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  Fixing flaky tests\n"}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(SummarizerConfig{BaseURL: srv.URL + "/v1/", APIKey: "k"})
	sum, err := s.Summarize(context.Background(), "Fix the flaky test")
	require.NoError(t, err)
	assert.Equal(t, "Fixing flaky tests", sum)
	assert.Equal(t, DefaultSummaryModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, `Summarize this Claude Code session request in 3-8 words: "Fix the flaky test"`, got.Messages[0].Content)
}

func TestOpenAISummarizer_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(SummarizerConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := s.Summarize(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAISummarizer_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAISummarizer(SummarizerConfig{BaseURL: srv.URL}).Summarize(context.Background(), "x")
	assert.Error(t, err)
}
