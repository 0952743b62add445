package tile

import (
	"fmt"
	"regexp"
	"strings"
)

var wikipediaSuffix = regexp.MustCompile(`\.wikipedia.*$`)

// RefLabel derives a human-readable label from a wikipedia URL's subdomain:
// "http://en.wikipedia.org/wiki/X" -> "EN".
func RefLabel(u string) string {
	s := strings.TrimPrefix(u, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = wikipediaSuffix.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// Build converts a candidate row into a tile: an item section, the value
// display, a references section, and the three decision buttons. The accept
// entry carries the fully formed edit action.
func Build(f Format, qNumber, missingValue string, refURLs []string) (Tile, error) {
	sections := []Section{{Type: "item", Q: qNumber}}

	var action *EditAction
	var err error
	switch f.Kind {
	case KindDate:
		sections = append(sections, Section{
			Type:  "html",
			Title: f.ValueTitle,
			Text:  "<b>" + missingValue + "</b>",
		})
		tv := timeValue{
			Time:          FormatDate(missingValue),
			Precision:     DatePrecision(missingValue),
			CalendarModel: gregorianModel,
		}
		action, err = newEditAction(f, qNumber, dataValue{Value: tv, Type: "time"}, "", refURLs)
	case KindItem:
		var id int
		id, err = ParseItemID(missingValue)
		if err != nil {
			return Tile{}, fmt.Errorf("build tile for %s: %w", qNumber, err)
		}
		// The proposed place is itself an entity, shown as a nested item card.
		sections = append(sections,
			Section{Type: "html", Title: f.ValueTitle},
			Section{Type: "item", Q: fmt.Sprintf("Q%d", id)},
		)
		ev := entityValue{EntityType: "item", NumericID: id}
		action, err = newEditAction(f, qNumber, dataValue{Value: ev, Type: "wikibase-entityid"}, "wikibase-item", refURLs)
	default:
		return Tile{}, fmt.Errorf("unknown fact kind %d", f.Kind)
	}
	if err != nil {
		return Tile{}, fmt.Errorf("build tile for %s: %w", qNumber, err)
	}

	sections = append(sections, Section{
		Type:  "html",
		Title: "References:",
		Text:  refLinks(refURLs),
	})

	entries := []Entry{
		{Type: "green", Decision: "accept", Label: "Accept", APIAction: action},
		{Type: "white", Decision: "skip", Label: "I don't know"},
		{Type: "blue", Decision: "reject", Label: "Reject"},
	}

	return Tile{
		ID:       qNumber,
		Sections: sections,
		Controls: []Control{{Type: "buttons", Entries: entries}},
	}, nil
}

// refLinks renders the source URLs as the HTML link list held in the
// references section.
func refLinks(refURLs []string) string {
	var b strings.Builder
	for i, u := range refURLs {
		if i > 0 {
			b.WriteString("<br>")
		}
		fmt.Fprintf(&b, `<a href="%s" target="_blank">%s Wikipedia</a>`, u, RefLabel(u))
	}
	return b.String()
}
