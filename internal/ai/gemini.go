package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// callTimeout bounds a single model call. There is no retry; a timed-out
// call surfaces as an error and the Fallback layer substitutes a default.
const callTimeout = 30 * time.Second

// Gemini implements the Generator interface using Google Gemini.
type Gemini struct {
	client  *genai.Client
	extract *genai.GenerativeModel // structured JSON output
	text    *genai.GenerativeModel // plain text operations
	story   *genai.GenerativeModel // warmer temperature for narratives
}

// NewGemini creates a new Gemini Generator instance.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	extract := client.GenerativeModel(modelName)
	extract.ResponseMIMEType = "application/json"
	extract.ResponseSchema = receiptSchema()

	text := client.GenerativeModel(modelName)

	story := client.GenerativeModel(modelName)
	story.SetTemperature(0.7)

	return &Gemini{
		client:  client,
		extract: extract,
		text:    text,
		story:   story,
	}, nil
}

// receiptSchema declares the extraction output shape. storeName, totalAmount,
// currency, items and trustScore are mandatory; date and fraudNotes optional.
func receiptSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"storeName":   {Type: genai.TypeString},
			"date":        {Type: genai.TypeString},
			"totalAmount": {Type: genai.TypeNumber},
			"currency":    {Type: genai.TypeString},
			"trustScore":  {Type: genai.TypeInteger, Description: "0-100 confidence in authenticity"},
			"fraudNotes":  {Type: genai.TypeString, Description: "Short explanation of the score"},
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString},
						"quantity": {Type: genai.TypeInteger},
						"price":    {Type: genai.TypeNumber},
					},
				},
			},
		},
		Required: []string{"storeName", "totalAmount", "currency", "items", "trustScore"},
	}
}

// ExtractReceipt analyzes a receipt image and extracts structured data.
func (g *Gemini) ExtractReceipt(ctx context.Context, image []byte, contentType string) (*ReceiptData, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	// Normalize HEIC/PDF uploads to PNG before the model call.
	pngData, err := normalizeMedia(image, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := g.extract.GenerateContent(ctx,
		genai.ImageData("png", pngData),
		genai.Text(receiptExtractPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	text, err := responseText(resp)
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
func (g *Gemini) CaptionPhoto(ctx context.Context, image []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	pngData, err := normalizeMedia(image, contentType)
	if err != nil {
		return "", err
	}

	resp, err := g.text.GenerateContent(ctx,
		genai.ImageData("png", pngData),
		genai.Text(captionPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return responseText(resp)
}

// SummarizeVoice condenses a recorded field report into a paragraph.
func (g *Gemini) SummarizeVoice(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if mimeType == "" {
		mimeType = "audio/mp3"
	}

	resp, err := g.text.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(voiceSummaryPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return responseText(resp)
}

// GenerateStory synthesizes the impact narrative from the draft context.
func (g *Gemini) GenerateStory(ctx context.Context, input StoryInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := g.story.GenerateContent(ctx, genai.Text(buildStoryPrompt(input)))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return responseText(resp)
}

// TranslateStory re-renders an existing narrative in another language.
func (g *Gemini) TranslateStory(ctx context.Context, text, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := g.text.GenerateContent(ctx, genai.Text(buildTranslatePrompt(text, language)))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return responseText(resp)
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
