package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseReceiptJSON parses the model's extraction response. Providers
// occasionally wrap the payload in markdown fences or prose, so the parser
// locates the outermost JSON object before unmarshaling.
func parseReceiptJSON(text string) (*ReceiptData, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data ReceiptData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.Date = normalizeDate(data.Date)

	data.StoreName = strings.TrimSpace(data.StoreName)
	if data.StoreName == "" {
		data.StoreName = "Unknown Store"
	}

	data.Currency = strings.ToUpper(strings.TrimSpace(data.Currency))
	if data.Currency == "" {
		data.Currency = "USD"
	}

	if data.TrustScore < 0 {
		data.TrustScore = 0
	} else if data.TrustScore > 100 {
		data.TrustScore = 100
	}

	if data.Items == nil {
		data.Items = []ReceiptItem{}
	}

	return &data, nil
}

// normalizeDate coerces the model's date string into YYYY-MM-DD, trying a
// few common formats and defaulting to today when nothing parses.
func normalizeDate(date string) string {
	if date == "" {
		return time.Now().Format("2006-01-02")
	}

	if d, err := time.Parse("2006-01-02", date); err == nil {
		return d.Format("2006-01-02")
	}

	formats := []string{
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
		"January 2, 2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}

	return time.Now().Format("2006-01-02")
}
