package xmlserde

// Marshal renders v as an XML document without a declaration. The
// first declared root tag names the outermost element unless WithRoot
// overrides it.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return marshal(v, o)
}

// MarshalWithDecl is Marshal preceded by the standard XML
// declaration.
func MarshalWithDecl(v any, opts ...Option) ([]byte, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	o.declaration = true
	return marshal(v, o)
}

// Unmarshal parses the XML document in data and stores the result in
// the value pointed to by v. The document is scanned for an element
// matching one of v's declared root tags (or the tag set with
// WithRoot); everything outside that element is ignored.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := applyOptions(opts)
	if err != nil {
		return err
	}
	return unmarshal(data, v, o)
}
