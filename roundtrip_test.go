package xmlserde_test

import (
	"testing"

	"github.com/TheFedaikin/xmlserde"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// spreadsheet pulls most of the mapping features into one document
// shape: attributes, defaults, markers, wrapped and untagged enums,
// lists and optional children.
type spreadsheet struct {
	Meta    xmlserde.Meta `xmlserde:"spreadsheet"`
	Version int           `xmlserde:"version,attr"`
	Author  string        `xmlserde:"author,attr,default=unknown"`
	Locked  bool          `xmlserde:"locked,sfc"`
	Sheets  []sheetInfo   `xmlserde:"sheet,child"`
	Style   *styleInfo    `xmlserde:"style,child"`
	Shapes  []shape       `xmlserde:",untag"`
}

type sheetInfo struct {
	Name string `xmlserde:"name,attr"`
	Rows int    `xmlserde:"rows,attr,default"`
}

type styleInfo struct {
	Font fontChoice `xmlserde:"font,child"`
}

func TestRoundTrip(t *testing.T) {
	t.Run("Value To Document And Back", func(t *testing.T) {
		want := spreadsheet{
			Version: 3,
			Author:  "kim",
			Locked:  true,
			Sheets:  []sheetInfo{{Name: "a", Rows: 10}, {Name: "b"}},
			Style:   &styleInfo{Font: namedFont("Mono")},
			Shapes:  []shape{circle{Radius: 2}, rect{W: 1, H: 2}},
		}
		data, err := xmlserde.Marshal(want)
		require.NoError(t, err)

		var got spreadsheet
		require.NoError(t, xmlserde.Unmarshal(data, &got))
		require.Empty(t, cmp.Diff(want, got))
	})

	t.Run("Defaults Survive The Trip", func(t *testing.T) {
		want := spreadsheet{Version: 1, Author: "unknown", Sheets: []sheetInfo{{Name: "only"}}}
		data, err := xmlserde.Marshal(want)
		require.NoError(t, err)
		require.Equal(t, `<spreadsheet version="1"><sheet name="only"/></spreadsheet>`, string(data))

		var got spreadsheet
		require.NoError(t, xmlserde.Unmarshal(data, &got))
		require.Empty(t, cmp.Diff(want, got))
	})

	t.Run("Document To Value And Back", func(t *testing.T) {
		doc := `<spreadsheet version="2" author="kim"><locked/>` +
			`<sheet name="a" rows="4"/><style><font><themeFont id="1"/></font></style>` +
			`<point/><circle r="5"/></spreadsheet>`
		var v spreadsheet
		require.NoError(t, xmlserde.Unmarshal([]byte(doc), &v))

		out, err := xmlserde.Marshal(v)
		require.NoError(t, err)
		require.Equal(t, doc, string(out))
	})
}
