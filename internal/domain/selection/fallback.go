package selection

import "github.com/okian/onthisday/internal/domain/model"

// FallbackEvent is returned whenever there is nothing to select from.
func FallbackEvent() model.Event {
	return model.Event{
		Type:        model.KindEvent,
		Year:        model.YearText("1843"),
		Description: `Charles Dickens published "A Christmas Carol", forever ruining December for those of us who prefer our spirits in bottles rather than chains`,
	}
}
