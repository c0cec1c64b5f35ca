package history

import "github.com/okian/onthisday/internal/domain/model"

// FallbackEvents returns the built-in list served when the text-generation
// service is unavailable or its reply is unusable. Each call returns a fresh slice.
func FallbackEvents() []model.Event {
	return []model.Event{
		{Type: model.KindEvent, Year: model.YearText("1666"), Description: "The Great Fire of London began in a bakery on Pudding Lane"},
		{Type: model.KindEvent, Year: model.YearText("1851"), Description: "The Great Exhibition opened in Hyde Park, London"},
		{Type: model.KindEvent, Year: model.YearText("1837"), Description: "Queen Victoria ascended to the throne"},
		{Type: model.KindEvent, Year: model.YearText("1605"), Description: "The Gunpowder Plot to blow up Parliament was discovered"},
		{Type: model.KindBirth, Year: model.YearText("1564"), Description: "William Shakespeare was born"},
		{Type: model.KindEvent, Year: model.YearText("1825"), Description: "The first passenger railway opened between Stockton and Darlington"},
	}
}
