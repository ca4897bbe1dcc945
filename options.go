package xmlserde

import "fmt"

// Option configures marshaling and unmarshaling behavior.
type Option func(*options) error

type options struct {
	root        string
	declaration bool
}

func applyOptions(opts []Option) (options, error) {
	var o options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return options{}, fmt.Errorf("xmlserde: %w", err)
		}
	}
	return o, nil
}

// WithRoot overrides the root tag declared on the type. Marshal
// writes the element under this tag; Unmarshal looks it up instead
// of the declared roots.
func WithRoot(tag string) Option {
	return func(o *options) error {
		if tag == "" {
			return fmt.Errorf("root tag must not be empty")
		}
		o.root = tag
		return nil
	}
}

// WithDeclaration prefixes the output with the standard XML
// declaration. Unmarshal ignores it.
func WithDeclaration() Option {
	return func(o *options) error {
		o.declaration = true
		return nil
	}
}
