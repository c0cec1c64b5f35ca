package selection_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/onthisday/internal/domain/model"
	"github.com/okian/onthisday/internal/domain/selection"
	"github.com/okian/onthisday/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }
}

func ev(kind model.Kind, year, desc string) model.Event {
	return model.Event{Type: kind, Year: model.YearText(year), Description: desc}
}

func sampleEvents() []model.Event {
	return []model.Event{
		ev(model.KindBirth, "1809", "Charles Darwin was born"),
		ev(model.KindEvent, "1815", "The Battle of Waterloo ended the Napoleonic war"),
		ev(model.KindEvent, "1789", "The French revolution began as crowds stormed the Bastille in Paris"),
		ev(model.KindDeath, "1965", "Winston Churchill died"),
		ev(model.KindEvent, "1848", "Gold was discovered at Sutter's Mill, starting a rush west"),
		ev(model.KindEvent, "1919", "The Treaty of Versailles was signed, formally ending the war"),
		ev(model.KindEvent, "2015", "A recent scientific discovery was announced"),
		ev(model.KindEvent, "1912", "The Titanic disaster shocked the world"),
	}
}

func TestScore(t *testing.T) {
	Convey("Given the scoring heuristic", t, func() {
		Convey("When a 60-character event mentions war and treaty", func() {
			desc := "The war ended when both nations signed a final peace treaty."
			So(len(desc), ShouldEqual, 60)
			score := selection.Score(ev(model.KindEvent, "1919", desc))

			Convey("Then it should score 10+10+5+3", func() {
				So(score, ShouldEqual, 28)
			})
		})

		Convey("When the same description belongs to a birth", func() {
			score := selection.Score(ev(model.KindBirth, "1919", "The war ended when both nations signed a final peace treaty."))

			Convey("Then the event bonus should be missing", func() {
				So(score, ShouldEqual, 23)
			})
		})

		Convey("When keywords differ in case or repeat", func() {
			score := selection.Score(ev(model.KindDeath, "1900", "WAR, war and more War"))

			Convey("Then each keyword should count once", func() {
				So(score, ShouldEqual, 10)
			})
		})

		Convey("When the description is exactly 50 characters", func() {
			desc := "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghij"
			So(len(desc), ShouldEqual, 50)

			Convey("Then the long description bonus should not apply", func() {
				So(selection.Score(ev(model.KindBirth, "1900", desc)), ShouldEqual, 0)
				So(selection.Score(ev(model.KindBirth, "1900", desc+"k")), ShouldEqual, 3)
			})
		})

		Convey("When inspecting the vocabulary", func() {
			kws := selection.Keywords()
			kws[0] = "mutated"

			Convey("Then it should hold 15 words and be a copy", func() {
				So(len(kws), ShouldEqual, 15)
				So(selection.Keywords()[0], ShouldEqual, "invented")
			})
		})
	})
}

func TestSelectorEmptyInput(t *testing.T) {
	Convey("Given a selector and no candidates", t, func() {
		s := selection.NewSelector(selection.WithClock(fixedClock(2024)))
		ctx := context.Background()

		Convey("Then SelectBest should return the fallback event", func() {
			got := s.SelectBest(ctx, nil)
			So(got, ShouldResemble, selection.FallbackEvent())
			So(got.Year.String(), ShouldEqual, "1843")
			So(got.Description, ShouldStartWith, `Charles Dickens published "A Christmas Carol"`)
		})

		Convey("Then SelectBestN should return it as a single element", func() {
			got := s.SelectBestN(ctx, []model.Event{}, 5)
			So(got, ShouldResemble, []model.Event{selection.FallbackEvent()})
		})
	})
}

func TestSelectorHistoricalFilter(t *testing.T) {
	Convey("Given events from 1900, 2020 and a non-numeric year in 2024", t, func() {
		s := selection.NewSelector(selection.WithClock(fixedClock(2024)))
		events := []model.Event{
			ev(model.KindEvent, "1900", "Old event"),
			ev(model.KindEvent, "2020", "Recent event"),
			ev(model.KindEvent, "not-a-year", "Undated event"),
		}

		Convey("When ranking", func() {
			ranked := s.Rank(events)

			Convey("Then only 1900 should be considered historical", func() {
				So(len(ranked), ShouldEqual, 1)
				So(ranked[0].Event.Year.String(), ShouldEqual, "1900")
			})
		})

		Convey("When no event is historical", func() {
			ranked := s.Rank(events[1:])

			Convey("Then scoring should fall back to all events", func() {
				So(len(ranked), ShouldEqual, 2)
			})
		})

		Convey("When the only old event has an empty description", func() {
			ranked := s.Rank([]model.Event{
				ev(model.KindEvent, "1900", ""),
				ev(model.KindBirth, "2020", "A recent birth"),
			})

			Convey("Then it should not count as historical and all events should be scored", func() {
				So(len(ranked), ShouldEqual, 2)
				So(ranked[0].Event.Year.String(), ShouldEqual, "1900")
				So(ranked[1].Event.Year.String(), ShouldEqual, "2020")
			})
		})

		Convey("When an old event with an empty description sits beside a valid one", func() {
			ranked := s.Rank([]model.Event{
				ev(model.KindEvent, "1900", "   "),
				ev(model.KindBirth, "1850", "A famous birth"),
			})

			Convey("Then only the valid event should be ranked", func() {
				So(len(ranked), ShouldEqual, 1)
				So(ranked[0].Event.Year.String(), ShouldEqual, "1850")
			})
		})

		Convey("When a year is exactly fifty years back", func() {
			ranked := s.Rank([]model.Event{
				ev(model.KindEvent, "1974", "Boundary event"),
				ev(model.KindEvent, "1973", "Older event"),
			})

			Convey("Then it should be excluded", func() {
				So(len(ranked), ShouldEqual, 1)
				So(ranked[0].Event.Year.String(), ShouldEqual, "1973")
			})
		})
	})
}

func TestSelectBestN(t *testing.T) {
	Convey("Given a selector over sample events", t, func() {
		s := selection.NewSelector(selection.WithClock(fixedClock(2024)))
		ctx := context.Background()
		events := sampleEvents()

		Convey("When asking for the top three", func() {
			got := s.SelectBestN(ctx, events, 3)

			Convey("Then they should come back in score order", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].Year.String(), ShouldEqual, "1919") // treaty + war + event + long
				So(got[1].Year.String(), ShouldEqual, "1789") // revolution + event + long
				So(got[2].Year.String(), ShouldEqual, "1848") // ties with 1789, keeps input order
			})
		})

		Convey("When called twice with the same input", func() {
			first := s.SelectBestN(ctx, events, 4)
			second := s.SelectBestN(ctx, events, 4)

			Convey("Then the results should be identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When varying count", func() {
			// Only 2015 is filtered out as recent.
			historicalSize := 7

			Convey("Then the length should be min(count, candidates)", func() {
				for count := 1; count <= 10; count++ {
					got := s.SelectBestN(ctx, events, count)
					So(len(got), ShouldEqual, min(count, historicalSize))
				}
			})
		})

		Convey("When count is not positive", func() {
			got := s.SelectBestN(ctx, events, 0)

			Convey("Then the default count should be used", func() {
				So(len(got), ShouldEqual, selection.DefaultCount)
			})
		})
	})
}

func TestSelectBest(t *testing.T) {
	Convey("Given a selector over sample events", t, func() {
		s := selection.NewSelector(selection.WithClock(fixedClock(2024)))
		ctx := context.Background()
		events := sampleEvents()

		ranked := s.Rank(events)
		topScores := map[int]bool{}
		for _, r := range ranked[:3] {
			topScores[r.Score] = true
		}

		Convey("When picking many times", func() {
			seen := map[string]bool{}
			for i := 0; i < 300; i++ {
				got := s.SelectBest(ctx, events)
				So(topScores[selection.Score(got)], ShouldBeTrue)
				seen[got.Year.String()] = true
			}

			Convey("Then every pick should come from the top three", func() {
				So(len(seen), ShouldBeLessThanOrEqualTo, 3)
				for year := range seen {
					So(year, ShouldBeIn, []string{"1919", "1789", "1848"})
				}
			})

			Convey("And variety should appear across calls", func() {
				So(len(seen), ShouldBeGreaterThan, 1)
			})
		})

		Convey("When only one candidate exists", func() {
			single := []model.Event{ev(model.KindBirth, "1564", "William Shakespeare was born")}

			Convey("Then it should always be returned", func() {
				for i := 0; i < 20; i++ {
					So(s.SelectBest(ctx, single), ShouldResemble, single[0])
				}
			})
		})

		Convey("When two selectors share a seed", func() {
			a := selection.NewSelector(selection.WithClock(fixedClock(2024)), selection.WithRandomSeed(7))
			b := selection.NewSelector(selection.WithClock(fixedClock(2024)), selection.WithRandomSeed(7))

			Convey("Then they should pick the same sequence", func() {
				for i := 0; i < 25; i++ {
					So(a.SelectBest(ctx, events), ShouldResemble, b.SelectBest(ctx, events))
				}
			})
		})
	})
}

func TestSelectorConcurrentUse(t *testing.T) {
	Convey("Given a seeded selector used from many goroutines", t, func() {
		s := selection.NewSelector(selection.WithClock(fixedClock(2024)), selection.WithRandomSeed(1))
		ctx := context.Background()
		events := sampleEvents()

		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			go func() {
				for j := 0; j < 50; j++ {
					if got := s.SelectBest(ctx, events); got.Description == "" {
						errs <- fmt.Errorf("empty selection")
						return
					}
				}
				errs <- nil
			}()
		}

		Convey("Then every goroutine should finish cleanly", func() {
			for i := 0; i < 16; i++ {
				So(<-errs, ShouldBeNil)
			}
		})
	})
}

// recordingLogger keeps the level and message of every record.
type recordingLogger struct {
	records *[]string
}

func (r recordingLogger) add(level, msg string) { *r.records = append(*r.records, level+" "+msg) }

func (r recordingLogger) Info(_ context.Context, msg string, _ ...logger.Field) {
	r.add("INFO", msg)
}

func (r recordingLogger) Error(_ context.Context, msg string, _ ...logger.Field) {
	r.add("ERROR", msg)
}

func (r recordingLogger) Debug(_ context.Context, msg string, _ ...logger.Field) {
	r.add("DEBUG", msg)
}

func (r recordingLogger) Warn(_ context.Context, msg string, _ ...logger.Field) {
	r.add("WARN", msg)
}

func (r recordingLogger) Fatal(_ context.Context, msg string, _ ...logger.Field) {
	r.add("FATAL", msg)
}

func (r recordingLogger) Named(string) logger.Logger { return r }
func (r recordingLogger) With(...logger.Field) logger.Logger { return r }

func TestSelectBestNLogging(t *testing.T) {
	Convey("Given a selector with a recording logger", t, func() {
		var records []string
		s := selection.NewSelector(
			selection.WithClock(fixedClock(2024)),
			selection.WithLogger(recordingLogger{records: &records}),
		)

		Convey("When selecting the top three", func() {
			s.SelectBestN(context.Background(), sampleEvents(), 3)

			Convey("Then the summary and each chosen event should be logged at info", func() {
				So(records, ShouldResemble, []string{
					"INFO selected events",
					"INFO selected event",
					"INFO selected event",
					"INFO selected event",
				})
			})
		})
	})
}
