/*
Package xmlserde maps Go structs to XML elements declaratively,
through struct tags rather than hand-written walking code. It is built
for document formats (spreadsheets, office files, configuration
dialects) where the XML layout is fixed and the Go types should read
as a description of it.

Every mapped struct declares its layout with `xmlserde` tags. The tag
names the XML counterpart and states the field's role: an attribute,
a child element, character data, or a self-closing marker element.

	type Font struct {
		Meta   xmlserde.Meta `xmlserde:"font"`
		Size   float64       `xmlserde:"sz,attr"`
		Bold   bool          `xmlserde:"b,sfc"`
		Family *string       `xmlserde:"family,attr"`
	}

	var f Font
	if err := xmlserde.Unmarshal(data, &f); err != nil {
		// handle error
	}
	out, err := xmlserde.Marshal(f)

The Meta marker field carries container-level settings: the root tag
(several alternatives can be separated by '|'), a rename_all casing
policy, namespace declarations, and deny_unknown for strict parsing.

Arity follows the Go type: a plain field is required, a pointer (or
interface) field is optional and absent when nil, and a slice field
accumulates repeated elements. The `default` option makes a plain
field optional by supplying the value used when the document omits
it; on output, a field equal to its default is not written.

Closed sets of alternative child elements are modeled as interface
types registered with RegisterEnum:

	type Pet interface{ isPet() }

	xmlserde.RegisterEnum[Pet](
		xmlserde.Variant[Dog]("dog"),
		xmlserde.Variant[Cat]("cat"),
	)

An interface-typed child field then accepts whichever variant element
the document carries. A field tagged `untag` splices variants (or a
nested struct's children) directly into the parent element without a
wrapper tag.

Regions of a document that should survive a read-modify-write cycle
untouched are captured with the Unparsed type, which records an
element verbatim and writes it back byte-for-byte.

Tag name matching is ASCII case-insensitive on input; output always
uses the declared names. Customization beyond the built-in scalar
types is available by implementing the Marshaler and Unmarshaler
interfaces.
*/
package xmlserde
