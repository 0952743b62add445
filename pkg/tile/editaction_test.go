package tile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1990", "+1990-00-00T00:00:00Z"},
		{"1990-05", "+1990-05-00T00:00:00Z"},
		{"1990-05-17", "+1990-05-17T00:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDate(tc.in))
		})
	}
}

func TestDatePrecision(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1990", PrecisionYear},
		{"1990-05", PrecisionMonth},
		{"1990-05-17", PrecisionDay},
		// odd lengths fall back to day precision
		{"1990-5", PrecisionDay},
		{"", PrecisionDay},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, DatePrecision(tc.in))
		})
	}
}

func TestParseItemID(t *testing.T) {
	id, err := ParseItemID("http://www.wikidata.org/wiki/Q12345")
	require.NoError(t, err)
	assert.Equal(t, 12345, id)

	id, err = ParseItemID("Q7")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = ParseItemID("http://www.wikidata.org/wiki/NotAnItem")
	assert.Error(t, err)

	_, err = ParseItemID("")
	assert.Error(t, err)
}

// decodeData unwraps the string-wrapped claims document of an edit action.
func decodeData(t *testing.T, a *EditAction) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(a.Data), &doc))
	return doc
}

func TestEditActionDateClaim(t *testing.T) {
	f := Format{
		Kind:       KindDate,
		Property:   "P570",
		ValueTitle: "Possible date of death:",
		Summary:    "Distributed game missing date of death. Update P570.",
	}
	refs := []string{"http://en.wikipedia.org/wiki/X", "http://de.wikipedia.org/wiki/X"}
	a, err := newEditAction(f, "Q42", dataValue{
		Value: timeValue{Time: FormatDate("1990-05"), Precision: DatePrecision("1990-05"), CalendarModel: gregorianModel},
		Type:  "time",
	}, "", refs)
	require.NoError(t, err)

	assert.Equal(t, "wbeditentity", a.Action)
	assert.Equal(t, "Q42", a.ID)
	assert.Equal(t, f.Summary, a.Summary)

	doc := decodeData(t, a)
	claims := doc["claims"].([]any)
	require.Len(t, claims, 1)
	claim := claims[0].(map[string]any)
	assert.Equal(t, "statement", claim["type"])
	assert.Equal(t, "normal", claim["rank"])

	mainsnak := claim["mainsnak"].(map[string]any)
	assert.Equal(t, "value", mainsnak["snaktype"])
	assert.Equal(t, "P570", mainsnak["property"])
	dv := mainsnak["datavalue"].(map[string]any)
	assert.Equal(t, "time", dv["type"])
	val := dv["value"].(map[string]any)
	assert.Equal(t, "+1990-05-00T00:00:00Z", val["time"])
	assert.Equal(t, float64(PrecisionMonth), val["precision"])
	assert.Equal(t, float64(0), val["timezone"])
	assert.Equal(t, "http://www.wikidata.org/entity/Q1985727", val["calendarmodel"])

	references := claim["references"].([]any)
	require.Len(t, references, 1)
	ref := references[0].(map[string]any)
	assert.Equal(t, []any{"P4656"}, ref["snaks-order"].([]any))
	snaks := ref["snaks"].(map[string]any)["P4656"].([]any)
	require.Len(t, snaks, 2)
	first := snaks[0].(map[string]any)
	assert.Equal(t, "P4656", first["property"])
	assert.Equal(t, "url", first["datatype"])
	firstDV := first["datavalue"].(map[string]any)
	assert.Equal(t, "http://en.wikipedia.org/wiki/X", firstDV["value"])
	assert.Equal(t, "string", firstDV["type"])
}

func TestEditActionItemClaim(t *testing.T) {
	f := Format{
		Kind:     KindItem,
		Property: "P19",
		Summary:  "Distributed game missing place of birth. Update P19.",
	}
	a, err := newEditAction(f, "Q42", dataValue{
		Value: entityValue{EntityType: "item", NumericID: 12345},
		Type:  "wikibase-entityid",
	}, "wikibase-item", []string{"http://en.wikipedia.org/wiki/X"})
	require.NoError(t, err)

	doc := decodeData(t, a)
	claim := doc["claims"].([]any)[0].(map[string]any)
	mainsnak := claim["mainsnak"].(map[string]any)
	assert.Equal(t, "P19", mainsnak["property"])
	assert.Equal(t, "wikibase-item", mainsnak["datatype"])
	dv := mainsnak["datavalue"].(map[string]any)
	assert.Equal(t, "wikibase-entityid", dv["type"])
	val := dv["value"].(map[string]any)
	assert.Equal(t, "item", val["entity-type"])
	assert.Equal(t, float64(12345), val["numeric-id"])
}
