package events

import (
	"io"
)

// Writer renders events as XML to an underlying io.Writer. Output is
// compact: no indentation or inserted whitespace.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeString(parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w.w, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteDecl writes the standard XML declaration.
func (w *Writer) WriteDecl() error {
	return w.writeString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
}

// WriteStart writes an opening tag with its attributes.
func (w *Writer) WriteStart(name string, attrs []Attr) error {
	return w.writeTag(name, attrs, ">")
}

// WriteEmpty writes a self-closing element with its attributes.
func (w *Writer) WriteEmpty(name string, attrs []Attr) error {
	return w.writeTag(name, attrs, "/>")
}

func (w *Writer) writeTag(name string, attrs []Attr, closing string) error {
	if err := w.writeString("<", name); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := w.writeString(" ", a.Name, `="`, EscapeAttr(a.Value), `"`); err != nil {
			return err
		}
	}
	return w.writeString(closing)
}

// WriteEnd writes a closing tag.
func (w *Writer) WriteEnd(name string) error {
	return w.writeString("</", name, ">")
}

// WriteText writes character data, escaping markup characters.
func (w *Writer) WriteText(s string) error {
	return w.writeString(EscapeText(s))
}

// WriteEvent replays a previously captured event verbatim. Tags read
// from a document carry their original bytes in Raw and are replayed
// as-is, so a capture/replay round trip preserves quote style and
// character references. Text content is always written raw.
func (w *Writer) WriteEvent(ev Event) error {
	switch ev.Kind {
	case Start:
		if ev.Raw != "" {
			return w.writeString(ev.Raw)
		}
		return w.WriteStart(ev.Name, ev.Attrs)
	case Empty:
		if ev.Raw != "" {
			return w.writeString(ev.Raw)
		}
		return w.WriteEmpty(ev.Name, ev.Attrs)
	case End:
		if ev.Raw != "" {
			return w.writeString(ev.Raw)
		}
		return w.WriteEnd(ev.Name)
	case Text:
		return w.writeString(ev.Raw)
	case CData:
		return w.writeString("<![CDATA[", ev.Raw, "]]>")
	case Comment:
		return w.writeString("<!--", ev.Raw, "-->")
	case PI, Decl:
		return w.writeString("<?", ev.Raw, "?>")
	case Directive:
		return w.writeString("<!", ev.Raw, ">")
	}
	return nil
}
