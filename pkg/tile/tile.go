// Package tile converts candidate rows into the display documents consumed
// by the game platform's renderer, including the ready-to-submit edit action
// carried by the accept button. Everything here is a pure transformation.
package tile

// Kind discriminates the two candidate fact shapes.
type Kind int

const (
	// KindDate means the proposed value is a date string ("1990", "1990-05",
	// "1990-05-17").
	KindDate Kind = iota
	// KindItem means the proposed value is a wikidata entity reference URL.
	KindItem
)

// Format describes how one fact kind is rendered and submitted.
type Format struct {
	Kind Kind
	// Property is the wikidata property the claim targets, e.g. "P570".
	Property string
	// ValueTitle is the heading shown above the proposed value.
	ValueTitle string
	// Summary is the edit summary attached to the accept action.
	Summary string
}

// Section is one display block in a tile.
type Section struct {
	Type  string `json:"type"`
	Q     string `json:"q,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Entry is one decision button. Only the accept entry carries an edit action.
type Entry struct {
	Type      string      `json:"type"`
	Decision  string      `json:"decision"`
	Label     string      `json:"label"`
	APIAction *EditAction `json:"api_action,omitempty"`
}

// Control groups entries for the renderer.
type Control struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
}

// Tile is the unit of work shown to a player. It exists only in the response
// and is never persisted.
type Tile struct {
	ID       string    `json:"id"`
	Sections []Section `json:"sections"`
	Controls []Control `json:"controls"`
}
