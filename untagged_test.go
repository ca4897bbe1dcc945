package xmlserde_test

import (
	"testing"

	"github.com/TheFedaikin/xmlserde"
	"github.com/stretchr/testify/require"
)

// pageSetup groups a few child elements that appear inline in the
// parent, with no wrapper element of their own.
type pageSetup struct {
	Margin page   `xmlserde:"margin,child"`
	Breaks []page `xmlserde:"brk,child"`
}

type worksheet struct {
	Meta  xmlserde.Meta `xmlserde:"worksheet"`
	Name  string        `xmlserde:"name,attr"`
	Setup pageSetup     `xmlserde:",untag"`
}

type worksheetOpt struct {
	Meta  xmlserde.Meta `xmlserde:"worksheet"`
	Name  string        `xmlserde:"name,attr"`
	Setup *pageSetup    `xmlserde:",untag"`
}

func TestUntaggedStruct(t *testing.T) {
	t.Run("Decode Inline Children", func(t *testing.T) {
		var w worksheet
		doc := `<worksheet name="s1"><brk n="1"/><margin n="5"/><brk n="2"/></worksheet>`
		err := xmlserde.Unmarshal([]byte(doc), &w)
		require.NoError(t, err)
		require.Equal(t, page{Number: 5}, w.Setup.Margin)
		require.Equal(t, []page{{Number: 1}, {Number: 2}}, w.Setup.Breaks)
	})

	t.Run("Encode Inline Children", func(t *testing.T) {
		w := worksheet{Name: "s1", Setup: pageSetup{
			Margin: page{Number: 5},
			Breaks: []page{{Number: 1}},
		}}
		out, err := xmlserde.Marshal(w)
		require.NoError(t, err)
		require.Equal(t, `<worksheet name="s1"><margin n="5"/><brk n="1"/></worksheet>`, string(out))
	})

	t.Run("Optional Absent Stays Nil", func(t *testing.T) {
		var w worksheetOpt
		err := xmlserde.Unmarshal([]byte(`<worksheet name="s1"/>`), &w)
		require.NoError(t, err)
		require.Nil(t, w.Setup)
	})

	t.Run("Absent Optional Group Self-Closes", func(t *testing.T) {
		out, err := xmlserde.Marshal(worksheetOpt{Name: "s1"})
		require.NoError(t, err)
		require.Equal(t, `<worksheet name="s1"/>`, string(out))
	})

	t.Run("Optional Present", func(t *testing.T) {
		var w worksheetOpt
		err := xmlserde.Unmarshal([]byte(`<worksheet name="s1"><margin n="3"/></worksheet>`), &w)
		require.NoError(t, err)
		require.NotNil(t, w.Setup)
		require.Equal(t, page{Number: 3}, w.Setup.Margin)
	})

	t.Run("Required Nested Child Missing", func(t *testing.T) {
		var w worksheet
		err := xmlserde.Unmarshal([]byte(`<worksheet name="s1"><brk n="1"/></worksheet>`), &w)
		var me *xmlserde.MissingFieldError
		require.ErrorAs(t, err, &me)
		require.Equal(t, "margin", me.Field)
	})

	t.Run("Non-Child Fields Rejected", func(t *testing.T) {
		type badGroup struct {
			Color string `xmlserde:"color,attr"`
		}
		type holder struct {
			Meta xmlserde.Meta `xmlserde:"holder"`
			G    badGroup      `xmlserde:",untag"`
		}
		var h holder
		err := xmlserde.Unmarshal([]byte(`<holder/>`), &h)
		var se *xmlserde.SchemaError
		require.ErrorAs(t, err, &se)
	})
}
