package xmlserde_test

import "fmt"

// hexColor exercises the Marshaler and Unmarshaler interfaces with a
// value that has no built-in scalar form.
type hexColor struct {
	R, G, B uint8
}

func (c hexColor) MarshalXMLValue() (string, error) {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}

func (c *hexColor) UnmarshalXMLValue(s string) error {
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("malformed color %q", s)
	}
	_, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	return err
}
