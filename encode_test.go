package xmlserde_test

import (
	"bytes"
	"testing"

	"github.com/TheFedaikin/xmlserde"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	t.Run("Attributes And Markers", func(t *testing.T) {
		out, err := xmlserde.Marshal(font{Size: 11, Name: "Arial", Bold: true})
		require.NoError(t, err)
		require.Equal(t, `<font sz="11" name="Arial"><b/></font>`, string(out))
	})

	t.Run("Default-Equal Attribute Omitted", func(t *testing.T) {
		out, err := xmlserde.Marshal(font{Size: 11, Name: "Calibri"})
		require.NoError(t, err)
		require.Equal(t, `<font sz="11"/>`, string(out))
	})

	t.Run("Empty Element Self-Closes", func(t *testing.T) {
		type blank struct {
			Meta xmlserde.Meta `xmlserde:"blank"`
		}
		out, err := xmlserde.Marshal(blank{})
		require.NoError(t, err)
		require.Equal(t, `<blank/>`, string(out))
	})

	t.Run("Text Is Escaped", func(t *testing.T) {
		b := book{Title: title{Value: "a<b&c"}}
		out, err := xmlserde.Marshal(b)
		require.NoError(t, err)
		require.Equal(t, `<book><title>a&lt;b&amp;c</title></book>`, string(out))
	})

	t.Run("Attribute Values Are Escaped", func(t *testing.T) {
		out, err := xmlserde.Marshal(font{Size: 1, Name: `say "less" & <go>`})
		require.NoError(t, err)
		require.Equal(t, `<font sz="1" name="say &quot;less&quot; &amp; &lt;go&gt;"/>`, string(out))
	})

	t.Run("Lists In Order", func(t *testing.T) {
		b := book{Title: title{Value: "t"}, Pages: []page{{Number: 1}, {Number: 2}}}
		out, err := xmlserde.Marshal(b)
		require.NoError(t, err)
		require.Equal(t, `<book><title>t</title><page n="1"/><page n="2"/></book>`, string(out))
	})

	t.Run("Optional Child Nil Omitted", func(t *testing.T) {
		b := book{Title: title{Value: "t"}, ISBN: &isbn{Code: "978"}}
		out, err := xmlserde.Marshal(b)
		require.NoError(t, err)
		require.Equal(t, `<book><title>t</title><isbn>978</isbn></book>`, string(out))
	})

	t.Run("With Declaration", func(t *testing.T) {
		type blank struct {
			Meta xmlserde.Meta `xmlserde:"blank"`
		}
		out, err := xmlserde.MarshalWithDecl(blank{})
		require.NoError(t, err)
		require.Equal(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><blank/>`, string(out))
	})

	t.Run("Root Override", func(t *testing.T) {
		type blank struct {
			Meta xmlserde.Meta `xmlserde:"blank"`
		}
		out, err := xmlserde.Marshal(blank{}, xmlserde.WithRoot("other"))
		require.NoError(t, err)
		require.Equal(t, `<other/>`, string(out))
	})

	t.Run("Namespace Declarations", func(t *testing.T) {
		type sheet struct {
			Meta xmlserde.Meta `xmlserde:"worksheet,xmlns=urn:main,xmlns:r=urn:rel"`
			Ref  string        `xmlserde:"r:id,attr"`
		}
		out, err := xmlserde.Marshal(sheet{Ref: "rId1"})
		require.NoError(t, err)
		require.Equal(t, `<worksheet xmlns="urn:main" xmlns:r="urn:rel" r:id="rId1"/>`, string(out))
	})

	t.Run("Skip Serializing", func(t *testing.T) {
		type cache struct {
			Meta  xmlserde.Meta `xmlserde:"cache"`
			Key   string        `xmlserde:"key,attr"`
			Dirty bool          `xmlserde:"dirty,attr,default,skip_serializing"`
		}
		out, err := xmlserde.Marshal(cache{Key: "k", Dirty: true})
		require.NoError(t, err)
		require.Equal(t, `<cache key="k"/>`, string(out))
	})

	t.Run("Default-Equal Child Omitted", func(t *testing.T) {
		type room struct {
			Meta xmlserde.Meta `xmlserde:"room"`
			Door page          `xmlserde:"door,child,default"`
		}
		out, err := xmlserde.Marshal(room{})
		require.NoError(t, err)
		require.Equal(t, `<room/>`, string(out))

		out, err = xmlserde.Marshal(room{Door: page{Number: 2}})
		require.NoError(t, err)
		require.Equal(t, `<room><door n="2"/></room>`, string(out))
	})

	t.Run("Custom Marshaler", func(t *testing.T) {
		type styled struct {
			Meta  xmlserde.Meta `xmlserde:"styled"`
			Color hexColor      `xmlserde:"color,attr"`
		}
		out, err := xmlserde.Marshal(styled{Color: hexColor{R: 0xff, G: 0x80}})
		require.NoError(t, err)
		require.Equal(t, `<styled color="#ff8000"/>`, string(out))
	})

	t.Run("Nil Pointer Rejected", func(t *testing.T) {
		var f *font
		_, err := xmlserde.Marshal(f)
		require.Error(t, err)
	})

	t.Run("No Root Declared", func(t *testing.T) {
		type nameless struct {
			N int `xmlserde:"n,attr"`
		}
		_, err := xmlserde.Marshal(nameless{N: 1})
		var se *xmlserde.SchemaError
		require.ErrorAs(t, err, &se)

		out, err := xmlserde.Marshal(nameless{N: 1}, xmlserde.WithRoot("thing"))
		require.NoError(t, err)
		require.Equal(t, `<thing n="1"/>`, string(out))
	})
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := xmlserde.NewEncoder(&buf, xmlserde.WithDeclaration())
	require.NoError(t, enc.Encode(font{Size: 8, Name: "Calibri"}))
	require.Equal(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><font sz="8"/>`, buf.String())
}
