package xmlserde

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Meta is a zero-size marker. A struct field of type Meta carries the
// container-level schema in its tag: the root tag name(s), separated
// by '|', followed by container options.
//
//	type Person struct {
//		Meta xmlserde.Meta `xmlserde:"person|employee,rename_all=snake_case,deny_unknown"`
//		...
//	}
//
// Container options: rename_all=<policy>, deny_unknown, xmlns=<uri>,
// xmlns:<prefix>=<uri>.
type Meta struct{}

type fieldKind int

const (
	fieldAttr fieldKind = iota
	fieldChild
	fieldText
	fieldSelfClosing
	fieldUntaggedEnum
	fieldUntaggedStruct
)

type arity int

const (
	arityScalar arity = iota
	arityOptional
	arityList
)

type schemaKind int

const (
	schemaStruct schemaKind = iota
	schemaEnum
)

// fieldDesc is the compiled descriptor of one mapped struct field.
type fieldDesc struct {
	idx     int
	goName  string
	kind    fieldKind
	name    string   // explicit canonical name; empty when derived
	aliases []string // additional accepted names; first is canonical when name is empty
	arity   arity
	elem    reflect.Type // slice element / pointer target / the field type itself
	nested  *schema      // schema of elem for child and untagged fields; nil for scalars and Unparsed

	hasDefault   bool
	defaultValue reflect.Value // of the field's type

	vecSize       int    // list capacity hint, 0 when unset
	vecSizeAttr   string // attribute carrying the capacity, "" when unset
	skipSerialize bool
}

// variantDesc is the compiled descriptor of one enum variant.
type variantDesc struct {
	tag    string
	typ    reflect.Type
	isText bool
	nested *schema // payload schema; nil for text variants
}

type nsDecl struct {
	prefix string
	uri    string
}

// schema is the immutable, process-lifetime description of a mapped
// type. Struct schemas carry fields; enum schemas carry variants.
type schema struct {
	typ         reflect.Type
	kind        schemaKind
	roots       []string
	ns          string
	customNS    []nsDecl
	denyUnknown bool
	renameAll   Case

	fields      []fieldDesc
	textField   int // index into fields, -1 when absent
	variants    []variantDesc
	textVariant int // index into variants, -1 when absent

	childTags []string // memoized childrenTags, filled by finalize
	tagsDone  bool
}

var (
	metaType     = reflect.TypeOf(Meta{})
	unparsedType = reflect.TypeOf(Unparsed{})
)

// resolvedName is the name a field serializes under: the explicit
// name, else the first alias, else the policy-transformed identifier.
func (sc *schema) resolvedName(f *fieldDesc) string {
	if f.name != "" {
		return f.name
	}
	if len(f.aliases) > 0 {
		return f.aliases[0]
	}
	return sc.renameAll.Convert(f.goName)
}

// fieldMatches reports whether n names the field: the canonical name,
// any alias, or, when neither is declared, the policy-derived
// identifier. Comparison is ASCII case-insensitive.
func (sc *schema) fieldMatches(f *fieldDesc, n string) bool {
	if f.name != "" && equalsCI(f.name, n) {
		return true
	}
	for _, a := range f.aliases {
		if equalsCI(a, n) {
			return true
		}
	}
	if f.name == "" && len(f.aliases) == 0 {
		return equalsCI(sc.renameAll.Convert(f.goName), n)
	}
	return false
}

func (sc *schema) containsChildTag(n string) bool {
	for _, t := range sc.childTags {
		if equalsCI(t, n) {
			return true
		}
	}
	return false
}

type schemaEntry struct {
	sc       *schema
	err      error
	building bool
}

var (
	schemaMu    sync.Mutex
	schemaCache = map[reflect.Type]*schemaEntry{}
)

// schemaOf compiles (or fetches from the cache) the schema for t.
// Recursive types are handled by publishing a schema shell before its
// fields are filled in.
func schemaOf(t reflect.Type) (*schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if e, ok := schemaCache[t]; ok && !e.building {
		return e.sc, e.err
	}

	b := &builder{}
	sc, err := b.schemaFor(t)
	if err == nil {
		err = b.finalize()
	}
	if err != nil {
		for _, st := range b.session {
			delete(schemaCache, st)
		}
		schemaCache[t] = &schemaEntry{err: err}
		return nil, err
	}
	for _, st := range b.session {
		schemaCache[st].building = false
	}
	return sc, nil
}

// builder tracks one compilation session: the set of types whose
// schemas were created by this call, so that cross-schema validation
// and childrenTags memoization run once the whole graph exists.
type builder struct {
	session []reflect.Type
}

func (b *builder) schemaFor(t reflect.Type) (*schema, error) {
	if e, ok := schemaCache[t]; ok {
		if e.err != nil {
			return nil, e.err
		}
		return e.sc, nil
	}
	switch t.Kind() {
	case reflect.Struct:
		return b.buildStruct(t)
	case reflect.Interface:
		return b.buildEnum(t)
	default:
		return nil, &SchemaError{Type: t, Msg: "type cannot be mapped to an element"}
	}
}

func (b *builder) publish(t reflect.Type, sc *schema) {
	schemaCache[t] = &schemaEntry{sc: sc, building: true}
	b.session = append(b.session, t)
}

func (b *builder) buildEnum(t reflect.Type) (*schema, error) {
	variants, ok := enumVariants(t)
	if !ok {
		return nil, &SchemaError{Type: t, Msg: "interface type is not a registered enum; call RegisterEnum first"}
	}
	sc := &schema{typ: t, kind: schemaEnum, textField: -1, textVariant: -1}
	b.publish(t, sc)
	for _, v := range variants {
		vd := variantDesc{tag: v.tag, typ: v.typ, isText: v.isText}
		if v.isText {
			sc.textVariant = len(sc.variants)
		} else {
			nested, err := b.schemaFor(v.typ)
			if err != nil {
				return nil, err
			}
			vd.nested = nested
		}
		sc.variants = append(sc.variants, vd)
	}
	return sc, nil
}

func (b *builder) buildStruct(t reflect.Type) (*schema, error) {
	sc := &schema{typ: t, kind: schemaStruct, textField: -1, textVariant: -1}
	b.publish(t, sc)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type == metaType {
			if err := sc.parseContainerTag(sf.Tag.Get("xmlserde")); err != nil {
				return nil, err
			}
			continue
		}
		tag, ok := sf.Tag.Lookup("xmlserde")
		if !ok || tag == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, &SchemaError{Type: t, Msg: "tagged field " + sf.Name + " is unexported"}
		}
		f, err := b.buildField(sc, i, sf, tag)
		if err != nil {
			return nil, err
		}
		if f.kind == fieldText {
			if sc.textField >= 0 {
				return nil, &SchemaError{Type: t, Msg: "more than one text field"}
			}
			sc.textField = len(sc.fields)
		}
		sc.fields = append(sc.fields, f)
	}

	if sc.textField >= 0 {
		for i := range sc.fields {
			switch sc.fields[i].kind {
			case fieldChild, fieldSelfClosing, fieldUntaggedEnum:
				return nil, &SchemaError{Type: t, Msg: "text field cannot be combined with element children"}
			}
		}
	}
	return sc, nil
}

func (sc *schema) parseContainerTag(tag string) error {
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		sc.roots = strings.Split(parts[0], "|")
	}
	for _, opt := range parts[1:] {
		switch {
		case opt == "deny_unknown":
			sc.denyUnknown = true
		case strings.HasPrefix(opt, "rename_all="):
			c, ok := parseCase(strings.TrimPrefix(opt, "rename_all="))
			if !ok {
				return &SchemaError{Type: sc.typ, Msg: "unknown rename_all policy " + strconv.Quote(strings.TrimPrefix(opt, "rename_all="))}
			}
			sc.renameAll = c
		case strings.HasPrefix(opt, "xmlns:"):
			decl, value, ok := strings.Cut(strings.TrimPrefix(opt, "xmlns:"), "=")
			if !ok || decl == "" {
				return &SchemaError{Type: sc.typ, Msg: "malformed namespace declaration " + strconv.Quote(opt)}
			}
			sc.customNS = append(sc.customNS, nsDecl{prefix: decl, uri: value})
		case strings.HasPrefix(opt, "xmlns="):
			sc.ns = strings.TrimPrefix(opt, "xmlns=")
		default:
			return &SchemaError{Type: sc.typ, Msg: "unknown container option " + strconv.Quote(opt)}
		}
	}
	return nil
}

func (b *builder) buildField(sc *schema, idx int, sf reflect.StructField, tag string) (fieldDesc, error) {
	t := sc.typ
	parts := strings.Split(tag, ",")
	if len(parts) < 2 {
		return fieldDesc{}, &SchemaError{Type: t, Msg: "field " + sf.Name + " needs a kind: attr, child, text, sfc or untag"}
	}
	f := fieldDesc{idx: idx, goName: sf.Name, name: parts[0]}

	// Arity and element type from the field's Go type.
	ft := sf.Type
	switch ft.Kind() {
	case reflect.Slice:
		f.arity = arityList
		f.elem = ft.Elem()
	case reflect.Pointer:
		f.arity = arityOptional
		f.elem = ft.Elem()
		if f.elem.Kind() == reflect.Interface {
			return fieldDesc{}, &SchemaError{Type: t, Msg: "field " + sf.Name + ": pointer to interface; use the interface type directly"}
		}
	case reflect.Interface:
		// A nil interface already expresses absence.
		f.arity = arityOptional
		f.elem = ft
	default:
		f.arity = arityScalar
		f.elem = ft
	}

	var err error
	switch parts[1] {
	case "attr":
		err = b.buildAttrField(sc, &f, sf)
	case "text":
		err = b.buildTextField(sc, &f, sf)
	case "sfc":
		err = b.buildSelfClosingField(sc, &f, sf)
	case "child":
		err = b.buildChildField(sc, &f, sf)
	case "untag":
		err = b.buildUntaggedField(sc, &f, sf)
	default:
		err = &SchemaError{Type: t, Msg: "field " + sf.Name + ": unknown kind " + strconv.Quote(parts[1])}
	}
	if err != nil {
		return fieldDesc{}, err
	}

	for _, opt := range parts[2:] {
		if err := b.applyFieldOption(sc, &f, sf, opt); err != nil {
			return fieldDesc{}, err
		}
	}
	return f, nil
}

func (b *builder) buildAttrField(sc *schema, f *fieldDesc, sf reflect.StructField) error {
	f.kind = fieldAttr
	if f.arity == arityList {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": attributes cannot be lists"}
	}
	if !isScalarType(f.elem) {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": attribute type " + f.elem.String() + " is not a scalar"}
	}
	return nil
}

func (b *builder) buildTextField(sc *schema, f *fieldDesc, sf reflect.StructField) error {
	f.kind = fieldText
	if f.arity == arityList {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": text content cannot be a list"}
	}
	if !isScalarType(f.elem) {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": text type " + f.elem.String() + " is not a scalar"}
	}
	return nil
}

func (b *builder) buildSelfClosingField(sc *schema, f *fieldDesc, sf reflect.StructField) error {
	f.kind = fieldSelfClosing
	if f.arity != arityScalar || f.elem.Kind() != reflect.Bool {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": self-closing markers must be bool"}
	}
	return nil
}

func (b *builder) buildChildField(sc *schema, f *fieldDesc, sf reflect.StructField) error {
	f.kind = fieldChild
	if f.elem == unparsedType {
		return nil
	}
	switch f.elem.Kind() {
	case reflect.Struct, reflect.Interface:
		nested, err := b.schemaFor(f.elem)
		if err != nil {
			return err
		}
		f.nested = nested
		return nil
	default:
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": child type " + f.elem.String() + " is not a mapped struct or enum"}
	}
}

func (b *builder) buildUntaggedField(sc *schema, f *fieldDesc, sf reflect.StructField) error {
	if f.name != "" {
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": untagged fields do not take a name"}
	}
	switch f.elem.Kind() {
	case reflect.Interface:
		f.kind = fieldUntaggedEnum
	case reflect.Struct:
		f.kind = fieldUntaggedStruct
		if f.arity == arityList {
			return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": untagged structs cannot be lists"}
		}
	default:
		return &SchemaError{Type: sc.typ, Msg: "field " + sf.Name + ": untagged type " + f.elem.String() + " is not a struct or enum"}
	}
	nested, err := b.schemaFor(f.elem)
	if err != nil {
		return err
	}
	f.nested = nested
	return nil
}

func (b *builder) applyFieldOption(sc *schema, f *fieldDesc, sf reflect.StructField, opt string) error {
	t := sc.typ
	switch {
	case opt == "default":
		if f.arity != arityScalar {
			return &SchemaError{Type: t, Msg: "field " + sf.Name + ": default on optional or list field"}
		}
		f.hasDefault = true
		f.defaultValue = reflect.Zero(sf.Type)
	case strings.HasPrefix(opt, "default="):
		if f.arity != arityScalar || !isScalarType(f.elem) {
			return &SchemaError{Type: t, Msg: "field " + sf.Name + ": literal default on non-scalar field"}
		}
		dv := reflect.New(sf.Type).Elem()
		if err := unmarshalScalar(dv, strings.TrimPrefix(opt, "default=")); err != nil {
			return &SchemaError{Type: t, Msg: "field " + sf.Name + ": bad default literal: " + err.Error()}
		}
		f.hasDefault = true
		f.defaultValue = dv
	case strings.HasPrefix(opt, "map="):
		f.aliases = strings.Split(strings.TrimPrefix(opt, "map="), "|")
		if f.kind == fieldUntaggedEnum || f.kind == fieldUntaggedStruct {
			return &SchemaError{Type: t, Msg: "field " + sf.Name + ": untagged fields do not take a name"}
		}
	case strings.HasPrefix(opt, "vec_size="):
		if f.kind != fieldChild || f.arity != arityList {
			return &SchemaError{Type: t, Msg: "field " + sf.Name + ": vec_size applies to child lists only"}
		}
		v := strings.TrimPrefix(opt, "vec_size=")
		if n, err := strconv.Atoi(v); err == nil {
			f.vecSize = n
		} else {
			f.vecSizeAttr = v
		}
	case opt == "skip_serializing":
		f.skipSerialize = true
	default:
		return &SchemaError{Type: t, Msg: "field " + sf.Name + ": unknown option " + strconv.Quote(opt)}
	}
	return nil
}

// finalize runs once the whole schema graph of a session exists: it
// memoizes childrenTags and checks the constraints that need a
// nested schema to be complete.
func (b *builder) finalize() error {
	for _, t := range b.session {
		computeChildTags(schemaCache[t].sc, map[*schema]bool{})
	}
	for _, t := range b.session {
		sc := schemaCache[t].sc
		for i := range sc.fields {
			f := &sc.fields[i]
			if f.kind != fieldUntaggedStruct {
				continue
			}
			for j := range f.nested.fields {
				if f.nested.fields[j].kind != fieldChild {
					return &SchemaError{Type: f.nested.typ, Msg: "cannot be an untagged struct: only child fields are allowed"}
				}
			}
			if len(f.nested.fields) == 0 {
				return &SchemaError{Type: f.nested.typ, Msg: "cannot be an untagged struct: no child fields"}
			}
		}
	}
	return nil
}

// computeChildTags memoizes the set of child tags a schema can begin
// with: for enums the variant discriminators, for structs the child
// field names plus the union over untagged-enum fields. The visiting
// set guards recursive schemas.
func computeChildTags(sc *schema, visiting map[*schema]bool) []string {
	if sc.tagsDone {
		return sc.childTags
	}
	if visiting[sc] {
		return nil
	}
	visiting[sc] = true
	defer delete(visiting, sc)

	var tags []string
	switch sc.kind {
	case schemaEnum:
		for i := range sc.variants {
			if !sc.variants[i].isText {
				tags = append(tags, sc.variants[i].tag)
			}
		}
	case schemaStruct:
		for i := range sc.fields {
			f := &sc.fields[i]
			switch f.kind {
			case fieldChild:
				tags = append(tags, sc.resolvedName(f))
			case fieldUntaggedEnum:
				tags = append(tags, computeChildTags(f.nested, visiting)...)
			}
		}
	}
	sc.childTags = tags
	sc.tagsDone = true
	return tags
}
