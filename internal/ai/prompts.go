package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// receiptExtractPrompt instructs the model to read a receipt image and
// assess its authenticity. The response shape is pinned by the JSON schema
// attached to the extraction model.
const receiptExtractPrompt = `You are an expert forensic accountant for an NGO. Analyze the provided image of a receipt/invoice.
Extract the Store Name, Date, Total Amount, Currency, and a List of Items.

CRITICAL: Analyze the image for authenticity.
- Is the text consistent?
- Does it look like a real store receipt?
- Are there signs of digital tampering?

Assign a 'trustScore' from 0 to 100 (100 is perfectly authentic).
Add 'fraudNotes' explaining any issues or confirming authenticity.

If no total is found, calculate the sum of the items.
Return the date in YYYY-MM-DD format.`

// receiptExtractJSONPrompt is appended for providers without native schema
// support so the response is still machine-parsable.
const receiptExtractJSONPrompt = `

Return ONLY valid JSON in this exact format:
{
  "storeName": "Store Name",
  "date": "YYYY-MM-DD",
  "totalAmount": 0.00,
  "currency": "USD",
  "trustScore": 0,
  "fraudNotes": "short explanation",
  "items": [{"name": "Item", "quantity": 1, "price": 0.00}]
}

Do not include any text before or after the JSON.
Do not use markdown code blocks.`

const captionPrompt = `Analyze this image of a charity distribution.
Describe the activity in one sentence for a photo caption.
Mention the items being distributed and the environment if visible.
Ensure the description is respectful to the beneficiaries' dignity.`

const voiceSummaryPrompt = `Listen to this field worker's voice note describing a charity distribution event.
Extract the key details: What happened, where, who was helped, and the general mood.
Convert this into a professional, heart-warming paragraph for a donor report.
Ignore filler words or pauses.`

// buildStoryPrompt aggregates the draft context into a single generation
// prompt. Total spend is the sum of receipt totals; currency comes from the
// first receipt, defaulting to USD when no receipt carries one.
func buildStoryPrompt(input StoryInput) string {
	var items []string
	total := decimal.Zero
	currency := "USD"
	for i, r := range input.Receipts {
		if i == 0 && r.Currency != "" {
			currency = r.Currency
		}
		total = total.Add(r.TotalAmount)
		for _, item := range r.Items {
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}
	}

	notes := input.Notes
	if notes == "" {
		notes = "N/A"
	}

	return fmt.Sprintf(`You are a professional non-profit communications officer.
Write a transparent and heart-warming distribution summary (approx 150 words) based on the data below.
Write the response in %s.

Campaign: %s
Location: %s
Beneficiaries: %d people/families
Supplies Purchased: %s
Total Value: %s %s
Visual Evidence Context: %s
Field Worker Notes: %s

Focus on the impact and the gratitude of the community.
Keep the tone professional, empathetic, and honest.
End with a specific thank you message to the donors.`,
		input.Language,
		input.CampaignName,
		input.Location,
		input.BeneficiaryCount,
		strings.Join(items, ", "),
		currency, total.String(),
		strings.Join(input.PhotoCaptions, "; "),
		notes,
	)
}

// buildTranslatePrompt keeps domain vocabulary either explained or
// accurately translated depending on context.
func buildTranslatePrompt(text, language string) string {
	return fmt.Sprintf(`Translate the following charity report into professional %s.
Ensure that Islamic terms (like Sadaqah, Muzakki, Mustahik) are either kept and explained or translated accurately depending on the context.

Text: "%s"`, language, text)
}
