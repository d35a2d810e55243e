package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama implements the Generator interface against a local Ollama server.
// Useful for offline field deployments where Gemini is unreachable. Vision
// models handle images but not audio, so voice summarization always fails
// here and the Fallback layer substitutes its fixed instruction.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama Generator instance. Recommended models:
// llava (general vision), qwen2-vl (better OCR), bakllava.
func NewOllama(baseURL, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			Timeout: 120 * time.Second, // local vision models are slow
		},
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// chat sends one prompt (optionally with an inline image) and returns the
// response text.
func (o *Ollama) chat(ctx context.Context, system, prompt string, image []byte) (string, error) {
	messages := []ollamaMessage{}
	if system != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: system})
	}
	user := ollamaMessage{Role: "user", Content: prompt}
	if image != nil {
		user.Images = []string{base64.StdEncoding.EncodeToString(image)}
	}
	messages = append(messages, user)

	jsonData, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Stream:   false,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

// ExtractReceipt analyzes a receipt image and extracts structured data.
func (o *Ollama) ExtractReceipt(ctx context.Context, image []byte, contentType string) (*ReceiptData, error) {
	pngData, err := normalizeMedia(image, contentType)
	if err != nil {
		return nil, err
	}

	system := "You are an expert at reading and extracting information from receipts and invoices. You must carefully read all text in images and extract accurate information."
	text, err := o.chat(ctx, system, receiptExtractPrompt+receiptExtractJSONPrompt, pngData)
	if err != nil {
		return nil, err
	}

	data, err := parseReceiptJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing receipt data: %w", err)
	}
	return data, nil
}

// CaptionPhoto describes a distribution photo in one sentence.
func (o *Ollama) CaptionPhoto(ctx context.Context, image []byte, contentType string) (string, error) {
	pngData, err := normalizeMedia(image, contentType)
	if err != nil {
		return "", err
	}
	return o.chat(ctx, "", captionPrompt, pngData)
}

// SummarizeVoice is not supported by Ollama vision models.
func (o *Ollama) SummarizeVoice(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return "", fmt.Errorf("ollama does not support audio input")
}

// GenerateStory synthesizes the impact narrative from the draft context.
func (o *Ollama) GenerateStory(ctx context.Context, input StoryInput) (string, error) {
	return o.chat(ctx, "", buildStoryPrompt(input), nil)
}

// TranslateStory re-renders an existing narrative in another language.
func (o *Ollama) TranslateStory(ctx context.Context, text, language string) (string, error) {
	return o.chat(ctx, "", buildTranslatePrompt(text, language), nil)
}

// Close closes the Ollama client (no-op for HTTP client).
func (o *Ollama) Close() error {
	return nil
}
