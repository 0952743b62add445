package tile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Wikidata time precisions.
const (
	PrecisionYear  = 9
	PrecisionMonth = 10
	PrecisionDay   = 11
)

const (
	// propImportURL (P4656) marks a claim as imported from another wikimedia
	// project; each source wikipedia page becomes one reference snak.
	propImportURL = "P4656"
	// gregorianModel is assumed for all dates; the upstream dataset only
	// contains modern dates.
	gregorianModel = "http://www.wikidata.org/entity/Q1985727"
)

// EditAction is a wbeditentity call the platform submits when a player
// accepts. wbeditentity is the one API that can add a claim and its
// references in a single step.
type EditAction struct {
	Action  string `json:"action"`
	ID      string `json:"id"`
	Summary string `json:"summary"`
	// Data is the JSON-encoded claims document, string-wrapped as the API
	// expects.
	Data string `json:"data"`
}

type claimsDocument struct {
	Claims []statement `json:"claims"`
}

type statement struct {
	MainSnak   snak        `json:"mainsnak"`
	Type       string      `json:"type"`
	Rank       string      `json:"rank"`
	References []reference `json:"references"`
}

type snak struct {
	SnakType  string    `json:"snaktype"`
	Property  string    `json:"property"`
	DataValue dataValue `json:"datavalue"`
	DataType  string    `json:"datatype,omitempty"`
}

type dataValue struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

// timeValue is the wikidata time-value format: a zero-padded date with a
// leading sign and midnight UTC time, plus a precision marker.
type timeValue struct {
	Time          string `json:"time"`
	Timezone      int    `json:"timezone"`
	Before        int    `json:"before"`
	After         int    `json:"after"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel"`
}

type entityValue struct {
	EntityType string `json:"entity-type"`
	NumericID  int    `json:"numeric-id"`
}

type reference struct {
	Snaks      map[string][]snak `json:"snaks"`
	SnaksOrder []string          `json:"snaks-order"`
}

// FormatDate zero-pads a year or year-month value to the full wikidata time
// format: "1990" -> "+1990-00-00T00:00:00Z".
func FormatDate(date string) string {
	switch len(date) {
	case 4:
		date += "-00-00"
	case 7:
		date += "-00"
	}
	return "+" + date + "T00:00:00Z"
}

// DatePrecision maps a date string to its wikidata precision by length:
// 4 (year), 7 (year-month), 10 (full date). Anything else falls back to day
// precision, matching the upstream dataset's contract that only whole
// precisions are emitted.
func DatePrecision(date string) int {
	switch len(date) {
	case 4:
		return PrecisionYear
	case 7:
		return PrecisionMonth
	case 10:
		return PrecisionDay
	default:
		return PrecisionDay
	}
}

var itemIDPattern = regexp.MustCompile(`Q(\d+)$`)

// ParseItemID extracts the trailing numeric entity id from an entity
// reference URL such as "http://www.wikidata.org/wiki/Q12345".
func ParseItemID(value string) (int, error) {
	m := itemIDPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("no trailing Q-id in %q", value)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse item id from %q: %w", value, err)
	}
	return n, nil
}

// newEditAction assembles the wbeditentity payload for one new claim with an
// import-URL reference block listing every source URL.
func newEditAction(f Format, qNumber string, value dataValue, datatype string, refURLs []string) (*EditAction, error) {
	snaks := make([]snak, 0, len(refURLs))
	for _, u := range refURLs {
		snaks = append(snaks, snak{
			SnakType: "value",
			Property: propImportURL,
			DataValue: dataValue{
				Value: u,
				Type:  "string",
			},
			DataType: "url",
		})
	}

	doc := claimsDocument{Claims: []statement{{
		MainSnak: snak{
			SnakType:  "value",
			Property:  f.Property,
			DataValue: value,
			DataType:  datatype,
		},
		Type: "statement",
		Rank: "normal",
		References: []reference{{
			Snaks:      map[string][]snak{propImportURL: snaks},
			SnaksOrder: []string{propImportURL},
		}},
	}}}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal claims: %w", err)
	}
	return &EditAction{
		Action:  "wbeditentity",
		ID:      qNumber,
		Summary: f.Summary,
		Data:    string(data),
	}, nil
}
