package events

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// SyntaxError reports a malformed construct in the input document,
// with the byte offset at which it was found.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Reader tokenizes an XML document into a stream of events. It is a
// pull parser: each call to Next consumes exactly one event. The
// Reader does not validate that elements are balanced; that is the
// caller's concern.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader over data. The slice is not copied and
// must not be mutated while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next returns the next event, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Event, error) {
	if r.pos >= len(r.data) {
		return Event{}, io.EOF
	}
	if r.data[r.pos] != '<' {
		return r.readText()
	}
	if r.pos+1 >= len(r.data) {
		return Event{}, r.errorf("unexpected end of input after '<'")
	}
	switch r.data[r.pos+1] {
	case '/':
		return r.readEnd()
	case '!':
		return r.readBang()
	case '?':
		return r.readPI()
	default:
		return r.readElement()
	}
}

func (r *Reader) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: r.pos, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) readText() (Event, error) {
	end := bytes.IndexByte(r.data[r.pos:], '<')
	if end < 0 {
		end = len(r.data) - r.pos
	}
	raw := string(r.data[r.pos : r.pos+end])
	r.pos += end
	return Event{Kind: Text, Raw: raw}, nil
}

func (r *Reader) readEnd() (Event, error) {
	tagStart := r.pos
	r.pos += 2 // consume "</"
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != '>' {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return Event{}, r.errorf("unterminated end tag")
	}
	name := strings.TrimRight(string(r.data[start:r.pos]), " \t\r\n")
	r.pos++ // consume '>'
	if name == "" {
		return Event{}, r.errorf("end tag with empty name")
	}
	return Event{Kind: End, Name: name, Raw: string(r.data[tagStart:r.pos])}, nil
}

func (r *Reader) readBang() (Event, error) {
	rest := r.data[r.pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("<!--")):
		return r.readDelimited(Comment, 4, "-->")
	case bytes.HasPrefix(rest, []byte("<![CDATA[")):
		return r.readDelimited(CData, 9, "]]>")
	default:
		// DOCTYPE and friends. Internal subsets with nested '<...>'
		// are matched by bracket depth.
		depth := 0
		for i := r.pos + 2; i < len(r.data); i++ {
			switch r.data[i] {
			case '<':
				depth++
			case '>':
				if depth == 0 {
					ev := Event{Kind: Directive, Raw: string(r.data[r.pos+2 : i])}
					r.pos = i + 1
					return ev, nil
				}
				depth--
			}
		}
		return Event{}, r.errorf("unterminated '<!' directive")
	}
}

func (r *Reader) readPI() (Event, error) {
	end := bytes.Index(r.data[r.pos:], []byte("?>"))
	if end < 0 {
		return Event{}, r.errorf("unterminated processing instruction")
	}
	raw := string(r.data[r.pos+2 : r.pos+end])
	r.pos += end + 2
	kind := PI
	if target, _, _ := strings.Cut(raw, " "); target == "xml" {
		kind = Decl
	}
	return Event{Kind: kind, Raw: raw}, nil
}

// readDelimited consumes an event that begins skip bytes into the
// input and runs until the closing delimiter.
func (r *Reader) readDelimited(kind Kind, skip int, closing string) (Event, error) {
	body := r.pos + skip
	end := bytes.Index(r.data[body:], []byte(closing))
	if end < 0 {
		return Event{}, r.errorf("unterminated %s section", kind)
	}
	ev := Event{Kind: kind, Raw: string(r.data[body : body+end])}
	r.pos = body + end + len(closing)
	return ev, nil
}

func (r *Reader) readElement() (Event, error) {
	tagStart := r.pos
	r.pos++ // consume '<'
	name := r.readName()
	if name == "" {
		return Event{}, r.errorf("element with empty name")
	}
	ev := Event{Name: name}
	for {
		r.skipSpace()
		if r.pos >= len(r.data) {
			return Event{}, r.errorf("unterminated element <%s>", name)
		}
		switch r.data[r.pos] {
		case '>':
			r.pos++
			ev.Kind = Start
			ev.Raw = string(r.data[tagStart:r.pos])
			return ev, nil
		case '/':
			if r.pos+1 >= len(r.data) || r.data[r.pos+1] != '>' {
				return Event{}, r.errorf("expected '/>' in element <%s>", name)
			}
			r.pos += 2
			ev.Kind = Empty
			ev.Raw = string(r.data[tagStart:r.pos])
			return ev, nil
		default:
			attr, err := r.readAttr(name)
			if err != nil {
				return Event{}, err
			}
			ev.Attrs = append(ev.Attrs, attr)
		}
	}
}

func (r *Reader) readAttr(elem string) (Attr, error) {
	name := r.readName()
	if name == "" {
		return Attr{}, r.errorf("malformed attribute in element <%s>", elem)
	}
	r.skipSpace()
	if r.pos >= len(r.data) || r.data[r.pos] != '=' {
		return Attr{}, r.errorf("attribute %q without value in element <%s>", name, elem)
	}
	r.pos++ // consume '='
	r.skipSpace()
	if r.pos >= len(r.data) || (r.data[r.pos] != '"' && r.data[r.pos] != '\'') {
		return Attr{}, r.errorf("unquoted value for attribute %q in element <%s>", name, elem)
	}
	quote := r.data[r.pos]
	r.pos++
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != quote {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return Attr{}, r.errorf("unterminated value for attribute %q in element <%s>", name, elem)
	}
	value, err := Unescape(string(r.data[start:r.pos]))
	if err != nil {
		return Attr{}, &SyntaxError{Offset: start, Msg: err.Error()}
	}
	r.pos++ // consume closing quote
	return Attr{Name: name, Value: value}, nil
}

// readName consumes a tag or attribute name. Names run until
// whitespace or XML markup punctuation; colons are kept so prefixed
// names like text:span stay literal.
func (r *Reader) readName() string {
	start := r.pos
	for r.pos < len(r.data) && !isNameEnd(r.data[r.pos]) {
		r.pos++
	}
	return string(r.data[start:r.pos])
}

func (r *Reader) skipSpace() {
	for r.pos < len(r.data) && isSpace(r.data[r.pos]) {
		r.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isNameEnd(c byte) bool {
	return isSpace(c) || c == '>' || c == '/' || c == '=' || c == '<'
}
