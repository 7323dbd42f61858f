// Package bridge implements the live-edit protocol between a host document
// and a sandboxed rendering surface: two state machines exchanging a small
// closed set of JSON-serializable messages over an abstract channel. The
// host never reaches into the sandbox's document; after every accepted patch
// or completed inline edit the sandbox reports its serialized markup back,
// and the host replaces the slide's HTML wholesale (last-write-wins).
package bridge

// Kind identifies a protocol message.
type Kind string

const (
	// KindSetEditMode arms or disarms the sandbox (host -> sandbox).
	KindSetEditMode Kind = "SET_EDIT_MODE"
	// KindElementClicked reports a selection (sandbox -> host).
	KindElementClicked Kind = "ELEMENT_CLICKED"
	// KindHTMLUpdated carries the sandbox's serialized markup after any
	// accepted change (sandbox -> host).
	KindHTMLUpdated Kind = "HTML_UPDATED"
	// KindUpdateElement patches style or content of one element
	// (host -> sandbox).
	KindUpdateElement Kind = "UPDATE_ELEMENT"
)

// styleSnapshotProps are the computed-style properties reported with every
// ELEMENT_CLICKED event.
var styleSnapshotProps = []string{
	"color",
	"background-color",
	"font-size",
	"font-family",
	"text-align",
	"padding",
	"margin",
	"border-radius",
}

// Message is a protocol message. The protocol carries no version field;
// both ends are deployed together.
type Message struct {
	Kind Kind `json:"type"`

	// SET_EDIT_MODE
	Enabled bool `json:"enabled,omitempty"`

	// ELEMENT_CLICKED
	ElementID string            `json:"elementId,omitempty"`
	TagName   string            `json:"tagName,omitempty"`
	Content   string            `json:"content,omitempty"`
	Styles    map[string]string `json:"styles,omitempty"`

	// HTML_UPDATED
	HTML string `json:"html,omitempty"`

	// UPDATE_ELEMENT; the key "innerText" replaces the element's text
	// content, any other key is applied as an inline CSS property.
	Changes map[string]string `json:"changes,omitempty"`
}
