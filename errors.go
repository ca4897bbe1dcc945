package xmlserde

import (
	"fmt"
	"reflect"
	"strings"
)

// SchemaError reports an invalid schema declaration, such as a text
// field combined with element children. It is detected while the
// type's schema is compiled, never in the middle of a document.
type SchemaError struct {
	Type reflect.Type
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Type == nil {
		return "xmlserde: " + e.Msg
	}
	return "xmlserde: invalid schema for " + e.Type.String() + ": " + e.Msg
}

// UnexpectedRootError reports a document whose root element matches
// none of the type's declared root tags.
type UnexpectedRootError struct {
	Tag   string
	Roots []string
}

func (e *UnexpectedRootError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("xmlserde: no root element matching one of [%s]", strings.Join(e.Roots, ", "))
	}
	return fmt.Sprintf("xmlserde: expected one of root tags [%s], got %q", strings.Join(e.Roots, ", "), e.Tag)
}

// MissingFieldError reports a required field for which the document
// supplied no value and the schema supplies no default.
type MissingFieldError struct {
	Type  reflect.Type
	Field string
}

func (e *MissingFieldError) Error() string {
	return "xmlserde: missing required field " + e.Type.String() + "." + e.Field
}

// ValueError reports a scalar value that could not be parsed into or
// rendered from its Go type.
type ValueError struct {
	Type  reflect.Type
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("xmlserde: cannot map %q to %s: %v", e.Value, e.Type, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// UnknownFieldError reports an undeclared attribute or child tag met
// by a container that denies unknown fields.
type UnknownFieldError struct {
	Type reflect.Type
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("xmlserde: unknown field %q in %s", e.Name, e.Type)
}

// SyntaxError reports malformed input: invalid UTF-8 or XML the
// tokenizer could not make sense of.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xmlserde: syntax error at offset %d: %s", e.Offset, e.Msg)
}
