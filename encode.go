package xmlserde

import (
	"bytes"
	"errors"
	"io"
	"reflect"

	"github.com/TheFedaikin/xmlserde/internal/events"
)

// An Encoder writes a single mapped value to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode marshals v and writes the document to the stream.
func (e *Encoder) Encode(v any) error {
	data, err := Marshal(v, e.opts...)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

func marshal(v any, o options) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &SchemaError{Type: reflect.TypeOf(v), Msg: "cannot marshal a nil pointer"}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, &SchemaError{Type: nil, Msg: "cannot marshal a nil value"}
	}
	sc, err := schemaOf(rv.Type())
	if err != nil {
		return nil, err
	}
	root := o.root
	if root == "" {
		if len(sc.roots) == 0 {
			return nil, &SchemaError{Type: rv.Type(), Msg: "no root tag declared; add a Meta field or use WithRoot"}
		}
		root = sc.renameAll.Convert(sc.roots[0])
	}

	var buf bytes.Buffer
	e := &encodeState{w: events.NewWriter(&buf)}
	if o.declaration {
		if err := e.w.WriteDecl(); err != nil {
			return nil, err
		}
	}
	if err := e.encodeElement(rv, sc, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encodeState struct {
	w *events.Writer
}

func (e *encodeState) encodeElement(rv reflect.Value, sc *schema, tag string) error {
	if sc.kind == schemaEnum {
		return e.encodeEnum(rv, sc, tag)
	}
	return e.encodeStruct(rv, sc, tag)
}

// encodeStruct writes rv as <tag>. The children are rendered first
// into a scratch buffer; an element with no content self-closes.
func (e *encodeState) encodeStruct(rv reflect.Value, sc *schema, tag string) error {
	attrs, err := e.structAttrs(rv, sc)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	sub := &encodeState{w: events.NewWriter(&body)}
	if err := sub.encodeStructContent(rv, sc); err != nil {
		return err
	}

	if body.Len() == 0 {
		return e.w.WriteEmpty(tag, attrs)
	}
	if err := e.w.WriteStart(tag, attrs); err != nil {
		return err
	}
	if err := e.w.WriteEvent(events.Event{Kind: events.Text, Raw: body.String()}); err != nil {
		return err
	}
	return e.w.WriteEnd(tag)
}

// structAttrs collects the element's attribute list: namespace
// declarations first, then the mapped attribute fields in order.
// Optional-nil and default-equal values are omitted.
func (e *encodeState) structAttrs(rv reflect.Value, sc *schema) ([]events.Attr, error) {
	var attrs []events.Attr
	if sc.ns != "" {
		attrs = append(attrs, events.Attr{Name: "xmlns", Value: sc.ns})
	}
	for _, d := range sc.customNS {
		attrs = append(attrs, events.Attr{Name: "xmlns:" + d.prefix, Value: d.uri})
	}
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.kind != fieldAttr || f.skipSerialize {
			continue
		}
		fv, ok := fieldScalar(rv, f)
		if !ok {
			continue
		}
		s, err := marshalScalar(fv)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, events.Attr{Name: sc.resolvedName(f), Value: s})
	}
	return attrs, nil
}

// fieldScalar resolves an attr or text field to its scalar value,
// reporting false when the value is absent or elided.
func fieldScalar(rv reflect.Value, f *fieldDesc) (reflect.Value, bool) {
	fv := rv.Field(f.idx)
	if f.arity == arityOptional {
		if fv.IsNil() {
			return reflect.Value{}, false
		}
		return fv.Elem(), true
	}
	if f.hasDefault && reflect.DeepEqual(fv.Interface(), f.defaultValue.Interface()) {
		return reflect.Value{}, false
	}
	return fv, true
}

// encodeStructContent writes the element's inner content: children,
// text, markers and untagged fields, in declaration order.
func (e *encodeState) encodeStructContent(rv reflect.Value, sc *schema) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		if f.skipSerialize {
			continue
		}
		var err error
		switch f.kind {
		case fieldText:
			err = e.encodeTextField(rv, f)
		case fieldSelfClosing:
			if rv.Field(f.idx).Bool() {
				err = e.w.WriteEmpty(sc.resolvedName(f), nil)
			}
		case fieldChild:
			err = e.encodeChildField(rv, sc, f)
		case fieldUntaggedEnum:
			err = e.encodeUntaggedEnumField(rv, f)
		case fieldUntaggedStruct:
			err = e.encodeUntaggedStructField(rv, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) encodeTextField(rv reflect.Value, f *fieldDesc) error {
	fv, ok := fieldScalar(rv, f)
	if !ok {
		return nil
	}
	s, err := marshalScalar(fv)
	if err != nil {
		return err
	}
	return e.w.WriteText(s)
}

func (e *encodeState) encodeChildField(rv reflect.Value, sc *schema, f *fieldDesc) error {
	name := sc.resolvedName(f)
	fv := rv.Field(f.idx)
	switch f.arity {
	case arityList:
		for i := 0; i < fv.Len(); i++ {
			if err := e.encodeChildValue(fv.Index(i), f, name); err != nil {
				return err
			}
		}
		return nil
	case arityOptional:
		if fv.IsNil() {
			return nil
		}
		if fv.Kind() == reflect.Interface {
			return e.encodeChildValue(fv, f, name)
		}
		return e.encodeChildValue(fv.Elem(), f, name)
	default:
		if f.hasDefault && reflect.DeepEqual(fv.Interface(), f.defaultValue.Interface()) {
			return nil
		}
		return e.encodeChildValue(fv, f, name)
	}
}

func (e *encodeState) encodeChildValue(fv reflect.Value, f *fieldDesc, name string) error {
	if f.elem == unparsedType {
		u := fv.Interface().(Unparsed)
		return u.emit(e.w, name)
	}
	return e.encodeElement(fv, f.nested, name)
}

func (e *encodeState) encodeUntaggedEnumField(rv reflect.Value, f *fieldDesc) error {
	fv := rv.Field(f.idx)
	if f.arity == arityList {
		for i := 0; i < fv.Len(); i++ {
			if fv.Index(i).IsNil() {
				continue
			}
			if err := e.encodeEnum(fv.Index(i), f.nested, ""); err != nil {
				return err
			}
		}
		return nil
	}
	if fv.IsNil() {
		return nil
	}
	return e.encodeEnum(fv, f.nested, "")
}

func (e *encodeState) encodeUntaggedStructField(rv reflect.Value, f *fieldDesc) error {
	fv := rv.Field(f.idx)
	if f.arity == arityOptional {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return e.encodeStructContent(fv, f.nested)
}

// encodeEnum writes an enum value. A tagged variant renders as its
// discriminator element, wrapped in tag when one is given; a text
// variant renders as character data.
func (e *encodeState) encodeEnum(rv reflect.Value, sc *schema, tag string) error {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	v := sc.variantByType(rv.Type())
	if v == nil {
		return &ValueError{Type: sc.typ, Value: rv.Type().String(), Err: errNotAVariant}
	}
	if v.isText {
		s, err := marshalScalar(rv)
		if err != nil {
			return err
		}
		if tag == "" {
			return e.w.WriteText(s)
		}
		if err := e.w.WriteStart(tag, nil); err != nil {
			return err
		}
		if err := e.w.WriteText(s); err != nil {
			return err
		}
		return e.w.WriteEnd(tag)
	}
	if tag == "" {
		return e.encodeElement(rv, v.nested, v.tag)
	}
	if err := e.w.WriteStart(tag, nil); err != nil {
		return err
	}
	if err := e.encodeElement(rv, v.nested, v.tag); err != nil {
		return err
	}
	return e.w.WriteEnd(tag)
}

var errNotAVariant = errors.New("type is not a registered variant of the enum")

func (sc *schema) variantByType(t reflect.Type) *variantDesc {
	for i := range sc.variants {
		if sc.variants[i].typ == t {
			return &sc.variants[i]
		}
	}
	return nil
}
