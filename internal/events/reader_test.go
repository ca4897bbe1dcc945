package events_test

import (
	"io"
	"testing"

	"github.com/TheFedaikin/xmlserde/internal/events"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, doc string) []events.Event {
	t.Helper()
	r := events.NewReader([]byte(doc))
	var evs []events.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return evs
		}
		require.NoError(t, err)
		evs = append(evs, ev)
	}
}

func TestReader(t *testing.T) {
	t.Run("Start And Empty Are Distinct", func(t *testing.T) {
		evs := readAll(t, `<a><b/></a>`)
		require.Len(t, evs, 3)
		require.Equal(t, events.Start, evs[0].Kind)
		require.Equal(t, "a", evs[0].Name)
		require.Equal(t, events.Empty, evs[1].Kind)
		require.Equal(t, "b", evs[1].Name)
		require.Equal(t, events.End, evs[2].Kind)
	})

	t.Run("Attributes", func(t *testing.T) {
		evs := readAll(t, `<a x="1" y='two' z="a&amp;b"/>`)
		require.Len(t, evs, 1)
		require.Equal(t, []events.Attr{
			{Name: "x", Value: "1"},
			{Name: "y", Value: "two"},
			{Name: "z", Value: "a&b"},
		}, evs[0].Attrs)
	})

	t.Run("Text Keeps Raw Bytes", func(t *testing.T) {
		evs := readAll(t, `<a>x &amp; y</a>`)
		require.Equal(t, events.Text, evs[1].Kind)
		require.Equal(t, "x &amp; y", evs[1].Raw)
		s, err := evs[1].Unescape()
		require.NoError(t, err)
		require.Equal(t, "x & y", s)
	})

	t.Run("CDATA", func(t *testing.T) {
		evs := readAll(t, `<a><![CDATA[1 < 2 & 3]]></a>`)
		require.Equal(t, events.CData, evs[1].Kind)
		require.Equal(t, "1 < 2 & 3", evs[1].Raw)
	})

	t.Run("Comment And PI And Decl", func(t *testing.T) {
		evs := readAll(t, `<?xml version="1.0"?><?mso app?><!--note--><a/>`)
		require.Equal(t, events.Decl, evs[0].Kind)
		require.Equal(t, events.PI, evs[1].Kind)
		require.Equal(t, events.Comment, evs[2].Kind)
		require.Equal(t, "note", evs[2].Raw)
		require.Equal(t, events.Empty, evs[3].Kind)
	})

	t.Run("Doctype With Internal Subset", func(t *testing.T) {
		evs := readAll(t, `<!DOCTYPE a [<!ELEMENT a EMPTY>]><a/>`)
		require.Equal(t, events.Directive, evs[0].Kind)
		require.Equal(t, events.Empty, evs[1].Kind)
	})

	t.Run("Prefixed Names Kept Literal", func(t *testing.T) {
		evs := readAll(t, `<r:a r:id="1"/>`)
		require.Equal(t, "r:a", evs[0].Name)
		require.Equal(t, "r:id", evs[0].Attrs[0].Name)
	})

	t.Run("Whitespace Inside Tags", func(t *testing.T) {
		evs := readAll(t, "<a  x = \"1\"\n/>")
		require.Equal(t, events.Empty, evs[0].Kind)
		require.Equal(t, "1", evs[0].Attrs[0].Value)
	})

	t.Run("Errors", func(t *testing.T) {
		for name, doc := range map[string]string{
			"Unterminated Tag":     `<a`,
			"Unterminated Attr":    `<a x="1`,
			"Unterminated Comment": `<!-- nope`,
			"Unterminated CDATA":   `<a><![CDATA[x`,
			"Bare Quote In Tag":    `<a x=1>`,
		} {
			t.Run(name, func(t *testing.T) {
				r := events.NewReader([]byte(doc))
				var err error
				for err == nil {
					_, err = r.Next()
				}
				require.NotEqual(t, io.EOF, err)
				var se *events.SyntaxError
				require.ErrorAs(t, err, &se)
			})
		}
	})
}

func TestUnescape(t *testing.T) {
	t.Run("Named And Numeric References", func(t *testing.T) {
		s, err := events.Unescape("&lt;&gt;&amp;&quot;&apos;&#65;&#x41;")
		require.NoError(t, err)
		require.Equal(t, `<>&"'AA`, s)
	})

	t.Run("Bad Reference", func(t *testing.T) {
		_, err := events.Unescape("&bogus;")
		require.Error(t, err)
	})

	t.Run("Unterminated Reference", func(t *testing.T) {
		_, err := events.Unescape("&amp")
		require.Error(t, err)
	})
}
