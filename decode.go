package xmlserde

import (
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/TheFedaikin/xmlserde/internal/events"
)

// A Decoder reads a single mapped value from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the whole stream and unmarshals it into v.
func (d *Decoder) Decode(v any) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v, d.opts...)
}

func unmarshal(data []byte, v any, o options) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &SchemaError{Type: reflect.TypeOf(v), Msg: "unmarshal target must be a non-nil pointer"}
	}
	rv = rv.Elem()
	sc, err := schemaOf(rv.Type())
	if err != nil {
		return err
	}
	roots := make([]string, 0, len(sc.roots))
	for _, r := range sc.roots {
		roots = append(roots, sc.renameAll.Convert(r))
	}
	if o.root != "" {
		roots = []string{o.root}
	}
	if len(roots) == 0 {
		return &SchemaError{Type: rv.Type(), Msg: "no root tag declared; add a Meta field or use WithRoot"}
	}
	if !utf8.Valid(data) {
		return &SyntaxError{Offset: 0, Msg: "input is not valid UTF-8"}
	}

	var firstTag string
	for _, root := range roots {
		src := events.NewReader(data)
		for {
			ev, err := src.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return convertSyntaxError(err)
			}
			if ev.Kind != events.Start && ev.Kind != events.Empty {
				continue
			}
			if firstTag == "" {
				firstTag = ev.Name
			}
			if !equalsCI(ev.Name, root) {
				continue
			}
			d := &decodeState{src: src}
			return d.decodeElement(rv, sc, ev)
		}
	}
	return &UnexpectedRootError{Tag: firstTag, Roots: roots}
}

func convertSyntaxError(err error) error {
	var se *events.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Offset: se.Offset, Msg: se.Msg}
	}
	return err
}

// decodeState drives deserialization over one event source. Nested
// elements are consumed fully by recursive calls, so any End event
// seen at the current level closes the current element.
type decodeState struct {
	src events.Source
}

func (d *decodeState) next() (events.Event, error) {
	ev, err := d.src.Next()
	if err != nil && err != io.EOF {
		return ev, convertSyntaxError(err)
	}
	return ev, err
}

// decodeElement unmarshals the element opened by ev into rv. For
// Empty events there is no content to consume.
func (d *decodeState) decodeElement(rv reflect.Value, sc *schema, ev events.Event) error {
	if sc.kind == schemaEnum {
		return d.decodeEnumWrapped(rv, sc, ev)
	}
	if ev.Kind == events.Empty {
		sub := &decodeState{src: events.NewReplay(nil)}
		return sub.decodeStruct(rv, sc, ev.Attrs)
	}
	return d.decodeStruct(rv, sc, ev.Attrs)
}

// decodeStruct fills rv from attrs and from events up to the End that
// closes the current element. Running out of input is not an error:
// truncated documents keep whatever was read.
func (d *decodeState) decodeStruct(rv reflect.Value, sc *schema, attrs []events.Attr) error {
	seen := make([]bool, len(sc.fields))

	for _, a := range attrs {
		i := sc.findField(fieldAttr, a.Name)
		if i < 0 {
			if sc.denyUnknown && !isNamespaceDecl(a.Name) && !sc.isVecSizeRef(a.Name) {
				return &UnknownFieldError{Type: sc.typ, Name: a.Name}
			}
			continue
		}
		if err := d.setScalarField(rv, sc, &sc.fields[i], a.Value); err != nil {
			return err
		}
		seen[i] = true
	}
	d.presizeLists(rv, sc, attrs)

	var captures [][]events.Event

loop:
	for {
		ev, err := d.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case events.End:
			break loop
		case events.Start, events.Empty:
			if err := d.decodeChildEvent(rv, sc, ev, seen, &captures); err != nil {
				return err
			}
		case events.Text, events.CData:
			if err := d.decodeTextEvent(rv, sc, ev, seen); err != nil {
				return err
			}
		}
	}

	if err := d.replayCaptures(rv, sc, captures, seen); err != nil {
		return err
	}
	return applyDefaults(rv, sc, seen)
}

func (d *decodeState) decodeChildEvent(rv reflect.Value, sc *schema, ev events.Event, seen []bool, captures *[][]events.Event) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		switch f.kind {
		case fieldSelfClosing:
			if !sc.fieldMatches(f, ev.Name) {
				continue
			}
			rv.Field(f.idx).SetBool(true)
			seen[i] = true
			if ev.Kind == events.Start {
				return d.skipElement()
			}
			return nil
		case fieldChild:
			if !sc.fieldMatches(f, ev.Name) {
				continue
			}
			seen[i] = true
			return d.decodeChildField(rv, sc, f, ev)
		}
	}

	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != fieldUntaggedEnum || !f.nested.containsChildTag(ev.Name) {
			continue
		}
		val, err := d.decodeVariant(f.nested, ev)
		if err != nil {
			return err
		}
		setFieldValue(rv, f, val)
		seen[i] = true
		return nil
	}

	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != fieldUntaggedStruct || !f.nested.containsChildTag(ev.Name) {
			continue
		}
		if *captures == nil {
			*captures = make([][]events.Event, len(sc.fields))
		}
		buf, err := d.captureSubtree(ev)
		if err != nil {
			return err
		}
		(*captures)[i] = append((*captures)[i], buf...)
		seen[i] = true
		return nil
	}

	if sc.denyUnknown {
		return &UnknownFieldError{Type: sc.typ, Name: ev.Name}
	}
	if ev.Kind == events.Start {
		return d.skipElement()
	}
	return nil
}

func (d *decodeState) decodeTextEvent(rv reflect.Value, sc *schema, ev events.Event, seen []bool) error {
	if sc.textField >= 0 {
		f := &sc.fields[sc.textField]
		s, err := ev.Unescape()
		if err != nil {
			return &ValueError{Type: f.elem, Value: ev.Raw, Err: err}
		}
		if err := d.setScalarField(rv, sc, f, s); err != nil {
			return err
		}
		seen[sc.textField] = true
		return nil
	}
	if strings.TrimSpace(ev.Raw) == "" {
		return nil
	}
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != fieldUntaggedEnum || f.nested.textVariant < 0 {
			continue
		}
		s, err := ev.Unescape()
		if err != nil {
			return &ValueError{Type: f.nested.typ, Value: ev.Raw, Err: err}
		}
		v := f.nested.variants[f.nested.textVariant]
		nv := reflect.New(v.typ).Elem()
		if err := unmarshalScalar(nv, s); err != nil {
			return err
		}
		setFieldValue(rv, f, nv)
		seen[i] = true
		return nil
	}
	return nil
}

func (d *decodeState) decodeChildField(rv reflect.Value, sc *schema, f *fieldDesc, ev events.Event) error {
	if f.elem == unparsedType {
		u, err := d.captureUnparsed(ev)
		if err != nil {
			return err
		}
		setFieldValue(rv, f, reflect.ValueOf(u))
		return nil
	}
	nv := reflect.New(f.elem).Elem()
	if err := d.decodeElement(nv, f.nested, ev); err != nil {
		return err
	}
	setFieldValue(rv, f, nv)
	return nil
}

// decodeEnumWrapped handles an enum behind its own wrapper element:
// the value is carried by the first variant-tagged child (or, for
// text variants, by character data) inside ev. When the entry tag is
// itself a variant discriminator the element decodes directly, with
// its own attributes.
func (d *decodeState) decodeEnumWrapped(rv reflect.Value, sc *schema, ev events.Event) error {
	if sc.variantByTag(ev.Name) != nil {
		val, err := d.decodeVariant(sc, ev)
		if err != nil {
			return err
		}
		rv.Set(val)
		return nil
	}
	if ev.Kind == events.Empty {
		return &ValueError{Type: sc.typ, Value: ev.Name, Err: errNoVariant}
	}
	found := false
	for {
		in, err := d.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch in.Kind {
		case events.End:
			if !found {
				return &ValueError{Type: sc.typ, Value: ev.Name, Err: errNoVariant}
			}
			return nil
		case events.Start, events.Empty:
			if !found && sc.variantByTag(in.Name) != nil {
				val, err := d.decodeVariant(sc, in)
				if err != nil {
					return err
				}
				rv.Set(val)
				found = true
				continue
			}
			if in.Kind == events.Start {
				if err := d.skipElement(); err != nil {
					return err
				}
			}
		case events.Text, events.CData:
			if found || sc.textVariant < 0 {
				continue
			}
			if strings.TrimSpace(in.Raw) == "" {
				continue
			}
			s, err := in.Unescape()
			if err != nil {
				return &ValueError{Type: sc.typ, Value: in.Raw, Err: err}
			}
			v := sc.variants[sc.textVariant]
			nv := reflect.New(v.typ).Elem()
			if err := unmarshalScalar(nv, s); err != nil {
				return err
			}
			rv.Set(nv)
			found = true
		}
	}
	if !found {
		return &ValueError{Type: sc.typ, Value: ev.Name, Err: errNoVariant}
	}
	return nil
}

var errNoVariant = errors.New("no enum variant found")

// decodeVariant unmarshals an enum payload from its discriminator
// element and returns the concrete value.
func (d *decodeState) decodeVariant(sc *schema, ev events.Event) (reflect.Value, error) {
	v := sc.variantByTag(ev.Name)
	if v == nil {
		return reflect.Value{}, &ValueError{Type: sc.typ, Value: ev.Name, Err: errNoVariant}
	}
	nv := reflect.New(v.typ).Elem()
	if err := d.decodeElement(nv, v.nested, ev); err != nil {
		return reflect.Value{}, err
	}
	return nv, nil
}

func (sc *schema) variantByTag(n string) *variantDesc {
	for i := range sc.variants {
		v := &sc.variants[i]
		if !v.isText && equalsCI(v.tag, n) {
			return v
		}
	}
	return nil
}

// findField ranks candidates: an explicit canonical name outranks an
// alias, which outranks a policy-derived identifier. Within a rank,
// declaration order decides.
func (sc *schema) findField(kind fieldKind, n string) int {
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind == kind && f.name != "" && equalsCI(f.name, n) {
			return i
		}
	}
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != kind {
			continue
		}
		for _, a := range f.aliases {
			if equalsCI(a, n) {
				return i
			}
		}
	}
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind == kind && f.name == "" && len(f.aliases) == 0 &&
			equalsCI(sc.renameAll.Convert(f.goName), n) {
			return i
		}
	}
	return -1
}

// isNamespaceDecl reports whether an attribute declares a namespace
// rather than carrying data; such attributes are never unknown
// fields.
func isNamespaceDecl(n string) bool {
	return equalsCI(n, "xmlns") || (len(n) > 6 && equalsCI(n[:6], "xmlns:"))
}

// isVecSizeRef reports whether some list field reads its capacity
// hint from the attribute named n.
func (sc *schema) isVecSizeRef(n string) bool {
	for i := range sc.fields {
		if sc.fields[i].vecSizeAttr != "" && equalsCI(sc.fields[i].vecSizeAttr, n) {
			return true
		}
	}
	return false
}

// replayCaptures runs the buffered untagged-struct subtrees through
// their nested schemas. A field with no captures stays nil when
// optional; when required it still decodes from an empty buffer so
// that nested defaults apply and missing required fields surface.
func (d *decodeState) replayCaptures(rv reflect.Value, sc *schema, captures [][]events.Event, seen []bool) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != fieldUntaggedStruct {
			continue
		}
		var buf []events.Event
		if captures != nil {
			buf = captures[i]
		}
		if len(buf) == 0 && f.arity == arityOptional {
			continue
		}
		nv := reflect.New(f.elem).Elem()
		sub := &decodeState{src: events.NewReplay(buf)}
		if err := sub.decodeStruct(nv, f.nested, nil); err != nil {
			return err
		}
		setFieldValue(rv, f, nv)
		seen[i] = true
	}
	return nil
}

func applyDefaults(rv reflect.Value, sc *schema, seen []bool) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		if seen[i] {
			continue
		}
		if f.hasDefault {
			rv.Field(f.idx).Set(f.defaultValue)
			continue
		}
		if f.arity != arityScalar {
			continue
		}
		switch f.kind {
		case fieldAttr, fieldChild, fieldText:
			return &MissingFieldError{Type: sc.typ, Field: sc.resolvedName(f)}
		}
	}
	return nil
}

// presizeLists applies vec_size hints before any child is decoded.
func (d *decodeState) presizeLists(rv reflect.Value, sc *schema, attrs []events.Attr) {
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.arity != arityList {
			continue
		}
		n := f.vecSize
		if f.vecSizeAttr != "" {
			for _, a := range attrs {
				if equalsCI(a.Name, f.vecSizeAttr) {
					if m, err := strconv.Atoi(a.Value); err == nil {
						n = m
					}
					break
				}
			}
		}
		if n > 0 {
			rv.Field(f.idx).Set(reflect.MakeSlice(rv.Field(f.idx).Type(), 0, n))
		}
	}
}

func (d *decodeState) setScalarField(rv reflect.Value, sc *schema, f *fieldDesc, s string) error {
	nv := reflect.New(f.elem).Elem()
	if err := unmarshalScalar(nv, s); err != nil {
		return err
	}
	setFieldValue(rv, f, nv)
	return nil
}

// setFieldValue stores v, of the field's element type, into rv's
// field according to arity: direct for scalars, boxed for optionals,
// appended for lists. Interface-typed fields take v directly.
func setFieldValue(rv reflect.Value, f *fieldDesc, v reflect.Value) {
	fv := rv.Field(f.idx)
	switch f.arity {
	case arityScalar:
		fv.Set(v)
	case arityOptional:
		if fv.Kind() == reflect.Interface {
			fv.Set(v)
			return
		}
		p := reflect.New(f.elem)
		p.Elem().Set(v)
		fv.Set(p)
	case arityList:
		fv.Set(reflect.Append(fv, v))
	}
}

// skipElement consumes events until the End closing the element whose
// Start was just read. Unknown subtrees are discarded whole.
func (d *decodeState) skipElement() error {
	depth := 0
	for {
		ev, err := d.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case events.Start:
			depth++
		case events.End:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

// captureUnparsed records the content of the element opened by ev:
// its attributes plus every event up to, but not including, the
// closing End.
func (d *decodeState) captureUnparsed(ev events.Event) (Unparsed, error) {
	u := Unparsed{attrs: ev.Attrs, start: ev}
	if ev.Kind == events.Empty {
		return u, nil
	}
	depth := 0
	for {
		in, err := d.next()
		if err == io.EOF {
			return u, nil
		}
		if err != nil {
			return u, err
		}
		switch in.Kind {
		case events.Start:
			depth++
		case events.End:
			if depth == 0 {
				u.end = in
				return u, nil
			}
			depth--
		}
		u.events = append(u.events, in)
	}
}

// captureSubtree records ev and, for Start events, its whole subtree
// including the closing End, so the buffer replays as a complete
// element.
func (d *decodeState) captureSubtree(ev events.Event) ([]events.Event, error) {
	buf := []events.Event{ev}
	if ev.Kind != events.Start {
		return buf, nil
	}
	depth := 0
	for {
		in, err := d.next()
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
		buf = append(buf, in)
		switch in.Kind {
		case events.Start:
			depth++
		case events.End:
			if depth == 0 {
				return buf, nil
			}
			depth--
		}
	}
}
