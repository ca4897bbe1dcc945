package xmlserde

import (
	"fmt"
	"reflect"
	"sync"
)

// EnumVariant describes one variant of a registered enum interface:
// the discriminator tag that selects it and the concrete Go type that
// carries its payload.
type EnumVariant struct {
	tag    string
	typ    reflect.Type
	isText bool
}

// Variant declares an enum variant resolved by its element tag. T is
// the concrete payload type; a payload-free variant is declared with
// an empty struct type.
func Variant[T any](tag string) EnumVariant {
	return EnumVariant{tag: tag, typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// TextVariant declares the variant constructed from bare character
// data instead of a child element. T must be a scalar type. An enum
// may declare at most one text variant.
func TextVariant[T any]() EnumVariant {
	return EnumVariant{typ: reflect.TypeOf((*T)(nil)).Elem(), isText: true}
}

var (
	enumMu       sync.RWMutex
	enumRegistry = map[reflect.Type][]EnumVariant{}
)

// RegisterEnum declares the closed variant set of the interface type
// I. Variants are matched in declaration order, first match wins. The
// registry is process-lifetime; registration is expected to happen in
// package init, before any Marshal or Unmarshal call.
//
// RegisterEnum panics on misuse: a non-interface I, a payload type
// that does not implement I, a duplicate registration, or more than
// one text variant. These are programming errors, not input errors.
func RegisterEnum[I any](variants ...EnumVariant) {
	iface := reflect.TypeOf((*I)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		panic(fmt.Sprintf("xmlserde: RegisterEnum of non-interface type %s", iface))
	}
	if len(variants) == 0 {
		panic(fmt.Sprintf("xmlserde: RegisterEnum of %s with no variants", iface))
	}
	textSeen := false
	for _, v := range variants {
		if !v.typ.Implements(iface) {
			panic(fmt.Sprintf("xmlserde: variant type %s does not implement %s", v.typ, iface))
		}
		if v.isText {
			if textSeen {
				panic(fmt.Sprintf("xmlserde: enum %s declares more than one text variant", iface))
			}
			textSeen = true
			if !isScalarType(v.typ) {
				panic(fmt.Sprintf("xmlserde: text variant type %s of %s is not a scalar", v.typ, iface))
			}
		} else if v.tag == "" {
			panic(fmt.Sprintf("xmlserde: variant of %s with empty tag", iface))
		}
	}
	enumMu.Lock()
	defer enumMu.Unlock()
	if _, ok := enumRegistry[iface]; ok {
		panic(fmt.Sprintf("xmlserde: enum %s registered twice", iface))
	}
	enumRegistry[iface] = variants
}

func enumVariants(t reflect.Type) ([]EnumVariant, bool) {
	enumMu.RLock()
	defer enumMu.RUnlock()
	vs, ok := enumRegistry[t]
	return vs, ok
}
