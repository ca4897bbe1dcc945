package xmlserde

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Marshaler is the interface implemented by scalar types that render
// their own attribute or text representation.
type Marshaler interface {
	MarshalXMLValue() (string, error)
}

// Unmarshaler is the interface implemented by scalar types that parse
// their own attribute or text representation.
type Unmarshaler interface {
	UnmarshalXMLValue(s string) error
}

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// isScalarType reports whether t can serve as an attribute or text
// value: a basic kind, or a type with custom value marshaling.
func isScalarType(t reflect.Type) bool {
	if t.Implements(marshalerType) || t.Implements(unmarshalerType) {
		return true
	}
	if pt := reflect.PointerTo(t); pt.Implements(marshalerType) || pt.Implements(unmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// marshalScalar renders rv as an attribute or text value. Booleans
// render as "1"/"0".
func marshalScalar(rv reflect.Value) (string, error) {
	if m, ok := scalarMarshaler(rv); ok {
		s, err := m.MarshalXMLValue()
		if err != nil {
			return "", &ValueError{Type: rv.Type(), Value: s, Err: err}
		}
		return s, nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	return "", &ValueError{Type: rv.Type(), Err: fmt.Errorf("unsupported scalar type")}
}

func scalarMarshaler(rv reflect.Value) (Marshaler, bool) {
	if rv.CanInterface() {
		if m, ok := rv.Interface().(Marshaler); ok {
			return m, true
		}
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if m, ok := rv.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	return nil, false
}

// unmarshalScalar parses s into rv. A parse failure is fatal to the
// whole deserialization; the caller propagates it unchanged.
func unmarshalScalar(rv reflect.Value, s string) error {
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			if err := u.UnmarshalXMLValue(s); err != nil {
				return &ValueError{Type: rv.Type(), Value: s, Err: err}
			}
			return nil
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "1", "true":
			rv.SetBool(true)
		case "0", "false":
			rv.SetBool(false)
		default:
			return &ValueError{Type: rv.Type(), Value: s, Err: fmt.Errorf("not a boolean")}
		}
	case reflect.String:
		rv.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, rv.Type().Bits())
		if err != nil {
			return &ValueError{Type: rv.Type(), Value: s, Err: err}
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, rv.Type().Bits())
		if err != nil {
			return &ValueError{Type: rv.Type(), Value: s, Err: err}
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, rv.Type().Bits())
		if err != nil {
			return &ValueError{Type: rv.Type(), Value: s, Err: err}
		}
		rv.SetFloat(f)
	default:
		return &ValueError{Type: rv.Type(), Value: s, Err: fmt.Errorf("unsupported scalar type")}
	}
	return nil
}
