package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/onthisday/internal/domain/model"
)

const (
	codeFence   = "```"
	languageTag = "json"
)

// CleanResponse trims a completion and unwraps a fenced code block, dropping
// an optional json language tag. Text outside the first block is discarded.
func CleanResponse(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, codeFence) {
		return content
	}
	// parts[0] is the empty text before the opening fence.
	parts := strings.SplitN(content, codeFence, 3)
	body := strings.TrimPrefix(parts[1], languageTag)
	return strings.TrimSpace(body)
}

// ParseResponse decodes a completion into event records.
func ParseResponse(content string) ([]model.Event, error) {
	cleaned := CleanResponse(content)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var events []model.Event
	if err := json.Unmarshal([]byte(cleaned), &events); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}
