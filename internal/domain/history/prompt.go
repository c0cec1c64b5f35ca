package history

import (
	"fmt"
	"time"

	"github.com/okian/onthisday/internal/domain/model"
)

// SystemInstruction frames the assistant for every history request.
const SystemInstruction = "You are a historical research assistant. Provide accurate historical information in the requested JSON format."

const promptTemplate = `Please provide a list of 15-20 notable historical events, births, and deaths that occurred on %s %d.

Requirements:
- Include a mix of events, births, and deaths from different time periods
- Focus on genuinely significant historical moments (wars, discoveries, inventions, political events, etc.)
- Prefer events that are at least 50 years old
- Include the specific year for each event
- Provide a brief but clear description of each event

Return the data as a JSON array with this exact structure:
[
  {
    "type": "event",
    "year": "1969",
    "description": "Apollo 11 landed on the Moon"
  },
  {
    "type": "birth",
    "year": "1809",
    "description": "Charles Darwin was born"
  },
  {
    "type": "death",
    "year": "1965",
    "description": "Winston Churchill died"
  }
]

Provide ONLY the JSON array, no other text.`

// Prompt builds the user prompt for a calendar date.
func Prompt(month, day int) (string, error) {
	if !model.ValidDate(month, day) {
		return "", fmt.Errorf("%w: %d/%d", ErrInvalidDate, month, day)
	}
	return fmt.Sprintf(promptTemplate, time.Month(month).String(), day), nil
}
