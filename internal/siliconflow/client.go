// Package siliconflow is a minimal client for the SiliconFlow speech and
// chat-completion endpoints used by the note pipeline.
package siliconflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrMalformedResponse marks API replies that parse as JSON but carry no
// usable payload.
var ErrMalformedResponse = errors.New("malformed API response")

// APIError is a non-2xx reply from the SiliconFlow API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Body)
}

// Client calls the SiliconFlow HTTP API. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL         string
	token           string
	transcribeModel string
	generateModel   string
	httpClient      *http.Client
	logger          *slog.Logger
}

func New(baseURL, token, transcribeModel, generateModel string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		token:           token,
		transcribeModel: transcribeModel,
		generateModel:   generateModel,
		httpClient:      &http.Client{Timeout: 120 * time.Second},
		logger:          logger,
	}
}

// SetHTTPClient overrides the transport, used by tests and diagnostics.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Transcribe uploads a WAV recording and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "recording.wav")
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("write audio payload: %w", err)
	}
	if err := writer.WriteField("model", c.transcribeModel); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	c.logger.Debug("transcription complete", "model", c.transcribeModel, "chars", len(parsed.Text))
	return parsed.Text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate rewrites a transcript according to the category instruction and
// returns the model output verbatim.
func (c *Client) Generate(ctx context.Context, categoryID, instruction, transcript string) (string, error) {
	payload := chatRequest{
		Model: c.generateModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction(categoryID, instruction)},
			{Role: "user", Content: transcript},
		},
		Temperature: 0.3,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("generate note content: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices found", ErrMalformedResponse)
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: no content in first choice", ErrMalformedResponse)
	}

	c.logger.Debug("generation complete", "model", c.generateModel, "category", categoryID, "chars", len(content))
	return content, nil
}

// do executes the request and returns the response body, mapping non-2xx
// statuses to *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

// systemInstruction embeds the category id and its effective instruction
// into the rewrite prompt.
func systemInstruction(categoryID, instruction string) string {
	return fmt.Sprintf(`You are an expert AI assistant helping to organize voice notes.
Your goal is to transform the user's raw transcribed text according to the requested format.

The user's selected mode is: %s
The specific instruction for this mode is: %s

Return ONLY the processed content. Do not include conversational filler like "Here is your summary".`, categoryID, instruction)
}
