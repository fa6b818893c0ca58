// Package transport is the thin request/response layer to the remote
// assistant endpoint: one JSON exchange for text, one multipart exchange for
// voice clips. It holds no conversation state.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the widget backend.
type Client struct {
	baseURL     string
	assistantID string
	httpClient  *http.Client
}

// ChatRequest is the JSON body of the text exchange.
type ChatRequest struct {
	AssistantID string `json:"assistant_id"`
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
}

// ChatResponse is the JSON reply of the text exchange.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// AudioResponse is the JSON reply of the audio exchange.
type AudioResponse struct {
	Success         bool   `json:"success"`
	TranscribedText string `json:"transcribed_text"`
	Response        string `json:"response"`
}

// NewClient creates a client for the given endpoint.
func NewClient(baseURL, assistantID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		assistantID: assistantID,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// SendText posts a text message and returns the assistant's reply.
func (c *Client) SendText(ctx context.Context, sessionID, message string) (string, error) {
	body, err := json.Marshal(ChatRequest{
		AssistantID: c.assistantID,
		SessionID:   sessionID,
		Message:     message,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/widget/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var chatResp ChatResponse
	if err := c.do(req, &chatResp); err != nil {
		return "", err
	}
	if !chatResp.Success {
		return "", fmt.Errorf("assistant reported failure")
	}
	return chatResp.Response, nil
}

// SendAudio uploads an encoded clip and returns the transcription together
// with the assistant's reply.
func (c *Client) SendAudio(ctx context.Context, sessionID string, clip []byte, mimeType string) (*AudioResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := "recording." + ExtensionForMIME(mimeType)
	fileWriter, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fileWriter.Write(clip); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.WriteField("assistant_id", c.assistantID); err != nil {
		return nil, fmt.Errorf("write assistant_id field: %w", err)
	}
	if err := writer.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("write session_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/widget/chat/audio", &buf)
	if err != nil {
		return nil, fmt.Errorf("create audio request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var audioResp AudioResponse
	if err := c.do(req, &audioResp); err != nil {
		return nil, err
	}
	if !audioResp.Success {
		return nil, fmt.Errorf("assistant reported failure")
	}
	return &audioResp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response JSON: %w", err)
	}
	return nil
}

// ExtensionForMIME derives the upload filename extension from the clip's
// MIME type.
func ExtensionForMIME(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "mp4"):
		return "mp4"
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	default:
		return "webm"
	}
}
