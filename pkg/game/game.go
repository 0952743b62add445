// Package game orchestrates the tile-serving pipeline: epoch resolution,
// candidate retrieval, de-duplication, claim verification, tile construction,
// and decision logging.
package game

import (
	"sort"

	"factloop/pkg/tile"
)

// Definition is one game's configuration: the fact it proposes and how it
// presents itself to the platform.
type Definition struct {
	Key          string
	Property     string
	Kind         tile.Kind
	Label        string
	Description  string
	Instructions string // fmt template; %s receives the epoch identifier
	Icon         string
	ValueTitle   string
	Summary      string
}

// Format returns the tile rendering rules for this game.
func (d Definition) Format() tile.Format {
	return tile.Format{
		Kind:       d.Kind,
		Property:   d.Property,
		ValueTitle: d.ValueTitle,
		Summary:    d.Summary,
	}
}

var definitions = map[string]Definition{
	"missing_date_of_death": {
		Key:         "missing_date_of_death",
		Property:    "P570",
		Kind:        tile.KindDate,
		Label:       "Missing Date of Death",
		Description: "Import missing date of death from wikipedia to wikidata.",
		Instructions: "*Click \"Accept\" to add a date of death claim(P570) to the wikidata entity, meanwhile set the wikipedia pages as references.\n" +
			"*Click \"Reject\" to refuse the suggestion.\n*If you're not sure, click \"I don't know\".\n" +
			"*The suggested date of death comes from wikipedia articles. There might be error due to outdated wikipedia page snapshots, program parsing error or wrong wikipedia info." +
			" Be sure to check the data before you make choice!\n" +
			"*The results will prioritize your primary language (the first language in your user setting).\n" +
			"*Data were collected until %s.",
		Icon:       "https://upload.wikimedia.org/wikipedia/commons/5/56/AngelHeart.png",
		ValueTitle: "Possible date of death:",
		Summary:    "Distributed game missing date of death. Update P570.",
	},
	"missing_place_of_birth": {
		Key:         "missing_place_of_birth",
		Property:    "P19",
		Kind:        tile.KindItem,
		Label:       "Born where",
		Description: "Import missing place of birth from wikipedia to wikidata.",
		Instructions: "*Click \"Accept\" to add a place of birth(P19) claim to the wikidata entity, meanwhile add the source wikipedia links to the claim reference part.\n" +
			"*Click \"Reject\" if the place of birth suggestion appears to be wrong.\n*If you are not sure of what to do, click \"I don't know\".\n" +
			"*Be sure to verify the suggested birth place using the links presented.\n" +
			"*Tiles containing a source wikipedia link in your primary language (the first language in your user settings) will be shown first; " +
			"other tiles are displayed when all tiles in your primary language have been marked.\n" +
			"*Data was last collected on %s.",
		Icon:       "https://upload.wikimedia.org/wikipedia/commons/thumb/3/37/BlankMap-World-820.png/320px-BlankMap-World-820.png",
		ValueTitle: "Was this person born here:",
		Summary:    "Distributed game missing place of birth. Update P19.",
	},
}

// Lookup returns the shipped game definition for a config key.
func Lookup(key string) (Definition, bool) {
	d, ok := definitions[key]
	return d, ok
}

// Keys returns the known game keys, for error messages.
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
