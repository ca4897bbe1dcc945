package xmlserde

import (
	"reflect"

	"github.com/TheFedaikin/xmlserde/internal/events"
)

// Unparsed captures an element verbatim: its attributes and every
// event inside it, in document order. A child field of type Unparsed
// swallows the matching element without interpreting it, and writes
// it back byte-for-byte on serialization. Use it for regions of a
// document that must survive a read-modify-write cycle untouched.
type Unparsed struct {
	attrs  []events.Attr
	start  events.Event
	end    events.Event
	events []events.Event
}

// Empty reports whether nothing was captured.
func (u Unparsed) Empty() bool {
	return len(u.attrs) == 0 && len(u.events) == 0
}

// Decode interprets the captured subtree as the mapped type of v,
// which must be a non-nil pointer to a struct. The captured
// attributes and child events are matched against v's schema exactly
// as if the element had been mapped to v in the first place.
func (u Unparsed) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &SchemaError{Type: reflect.TypeOf(v), Msg: "decode target must be a non-nil pointer"}
	}
	rv = rv.Elem()
	sc, err := schemaOf(rv.Type())
	if err != nil {
		return err
	}
	if sc.kind != schemaStruct {
		return &SchemaError{Type: rv.Type(), Msg: "decode target must be a struct"}
	}
	d := &decodeState{src: events.NewReplay(u.events)}
	return d.decodeStruct(rv, sc, u.attrs)
}

// emit writes the captured region back out unchanged. A value that
// was read from a document replays the original tag bytes; a
// zero-constructed value renders from tag and attrs.
func (u Unparsed) emit(w *events.Writer, tag string) error {
	if u.start.Name == "" {
		if len(u.events) == 0 {
			return w.WriteEmpty(tag, u.attrs)
		}
		if err := w.WriteStart(tag, u.attrs); err != nil {
			return err
		}
		for _, ev := range u.events {
			if err := w.WriteEvent(ev); err != nil {
				return err
			}
		}
		return w.WriteEnd(tag)
	}
	if err := w.WriteEvent(u.start); err != nil {
		return err
	}
	if u.start.Kind == events.Empty {
		return nil
	}
	for _, ev := range u.events {
		if err := w.WriteEvent(ev); err != nil {
			return err
		}
	}
	if u.end.Name == "" {
		return w.WriteEnd(u.start.Name)
	}
	return w.WriteEvent(u.end)
}
