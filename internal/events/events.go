// Package events provides the streaming XML event layer used by the
// xmlserde engines: a pull-based Reader that tokenizes a document into
// events and a push-based Writer that renders events back to XML.
//
// The layer is deliberately small. It distinguishes self-closing
// elements (Empty) from open elements (Start) and keeps the raw bytes
// of character data, both of which the mapping engines depend on and
// neither of which encoding/xml's token stream offers.
package events

import (
	"fmt"
	"io"
)

// Kind identifies the type of an XML event.
type Kind int

const (
	// Start is an opening element tag: <name attr="v">.
	Start Kind = iota
	// Empty is a self-closing element: <name attr="v"/>.
	Empty
	// End is a closing element tag: </name>.
	End
	// Text is character data between tags. Raw keeps the original
	// bytes with entity references unresolved.
	Text
	// CData is a <![CDATA[...]]> section.
	CData
	// Comment is a <!-- ... --> section.
	Comment
	// PI is a processing instruction other than the XML declaration.
	PI
	// Decl is the <?xml ...?> declaration.
	Decl
	// Directive is a <!...> declaration such as DOCTYPE.
	Directive
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "Start"
	case Empty:
		return "Empty"
	case End:
		return "End"
	case Text:
		return "Text"
	case CData:
		return "CData"
	case Comment:
		return "Comment"
	case PI:
		return "PI"
	case Decl:
		return "Decl"
	case Directive:
		return "Directive"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Attr is a single element attribute. Value holds the unescaped text.
type Attr struct {
	Name  string
	Value string
}

// Event is one parsed XML event.
//
// Name is set for Start, Empty and End events. Attrs is set for Start
// and Empty events. Raw holds the verbatim content of Text, CData,
// Comment, PI, Decl and Directive events; for tag events read from a
// document it holds the original tag bytes, which WriteEvent replays
// unchanged.
type Event struct {
	Kind  Kind
	Name  string
	Attrs []Attr
	Raw   string
}

// Unescape resolves entity references in the event's raw content.
// It is meaningful for Text events; other kinds return Raw unchanged.
func (e Event) Unescape() (string, error) {
	if e.Kind == CData {
		return e.Raw, nil
	}
	return Unescape(e.Raw)
}

// Source is a pull-based supplier of events. Next returns io.EOF when
// the stream is exhausted. Both the Reader and replay buffers (such as
// captured opaque subtrees) implement it.
type Source interface {
	Next() (Event, error)
}

// Replay is a Source over an already-materialized event slice. It is
// used to re-run captured subtrees through the deserialization engine.
type Replay struct {
	events []Event
	pos    int
}

// NewReplay returns a Source yielding evs in order.
func NewReplay(evs []Event) *Replay {
	return &Replay{events: evs}
}

// Next implements Source.
func (r *Replay) Next() (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, io.EOF
	}
	ev := r.events[r.pos]
	r.pos++
	return ev, nil
}
