package siliconflow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "sk-test", "TeleAI/TeleSpeechASR", "deepseek-ai/DeepSeek-V3", nil)
}

func TestTranscribeSendsMultipartAndParsesText(t *testing.T) {
	wav := []byte("RIFFfakewav")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "TeleAI/TeleSpeechASR", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "recording.wav", header.Filename)
		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, wav, uploaded)

		json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
	})

	text, err := client.Transcribe(context.Background(), wav)
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestTranscribeReportsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := client.Transcribe(context.Background(), []byte("x"))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Contains(t, apiErr.Body, "invalid token")
}

func TestGenerateSendsSystemInstructionAndTranscript(t *testing.T) {
	var got chatRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"choices":[{"message":{"content":"- buy milk"}}]}`))
	})

	out, err := client.Generate(context.Background(), "action_items", "Extract all action items.", "i need to buy milk")
	require.NoError(t, err)
	require.Equal(t, "- buy milk", out)

	require.Equal(t, "deepseek-ai/DeepSeek-V3", got.Model)
	require.Equal(t, 0.3, got.Temperature)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Contains(t, got.Messages[0].Content, "The user's selected mode is: action_items")
	require.Contains(t, got.Messages[0].Content, "Extract all action items.")
	require.Contains(t, got.Messages[0].Content, "Return ONLY the processed content.")
	require.Equal(t, "user", got.Messages[1].Role)
	require.Equal(t, "i need to buy milk", got.Messages[1].Content)
}

func TestGenerateRejectsResponseWithoutChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Generate(context.Background(), "summary", "Summarize.", "text")
	require.ErrorIs(t, err, ErrMalformedResponse)
	require.Contains(t, err.Error(), "no choices")
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	_, err := client.Generate(context.Background(), "summary", "Summarize.", "text")
	require.ErrorIs(t, err, ErrMalformedResponse)
	require.Contains(t, err.Error(), "no content")
}

func TestGenerateReportsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "summary", "Summarize.", "text")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	client := New("https://api.siliconflow.cn/v1/", "tok", "m1", "m2", nil)
	require.Equal(t, "https://api.siliconflow.cn/v1", client.baseURL)
}
