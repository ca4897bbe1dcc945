package xmlserde_test

import (
	"testing"

	"github.com/TheFedaikin/xmlserde"
	"github.com/stretchr/testify/require"
)

func TestCaseConvert(t *testing.T) {
	tests := []struct {
		name string
		c    xmlserde.Case
		want string
	}{
		{"None", xmlserde.CaseNone, "PageCount"},
		{"Lower", xmlserde.CaseLower, "pagecount"},
		{"Upper", xmlserde.CaseUpper, "PAGECOUNT"},
		{"Camel", xmlserde.CaseCamel, "pageCount"},
		{"Pascal", xmlserde.CasePascal, "PageCount"},
		{"Snake", xmlserde.CaseSnake, "page_count"},
		{"Kebab", xmlserde.CaseKebab, "page-count"},
		{"ScreamingSnake", xmlserde.CaseScreamingSnake, "PAGE_COUNT"},
		{"ScreamingKebab", xmlserde.CaseScreamingKebab, "PAGE-COUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.c.Convert("PageCount"))
		})
	}
}

func TestRenameAllPolicies(t *testing.T) {
	t.Run("Kebab Case", func(t *testing.T) {
		type cfg struct {
			Meta     xmlserde.Meta `xmlserde:"cfg,rename_all=kebab-case"`
			MaxDepth int           `xmlserde:",attr"`
		}
		out, err := xmlserde.Marshal(cfg{MaxDepth: 2})
		require.NoError(t, err)
		require.Equal(t, `<cfg max-depth="2"/>`, string(out))
	})

	t.Run("Screaming Snake Case", func(t *testing.T) {
		type cfg struct {
			Meta     xmlserde.Meta `xmlserde:"cfg,rename_all=SCREAMING_SNAKE_CASE"`
			MaxDepth int           `xmlserde:",attr"`
		}
		out, err := xmlserde.Marshal(cfg{MaxDepth: 2})
		require.NoError(t, err)
		require.Equal(t, `<cfg MAX_DEPTH="2"/>`, string(out))
	})

	t.Run("Explicit Name Wins Over Policy", func(t *testing.T) {
		type cfg struct {
			Meta     xmlserde.Meta `xmlserde:"cfg,rename_all=snake_case"`
			MaxDepth int           `xmlserde:"depth,attr"`
		}
		out, err := xmlserde.Marshal(cfg{MaxDepth: 2})
		require.NoError(t, err)
		require.Equal(t, `<cfg depth="2"/>`, string(out))
	})

	t.Run("Policy Applies To The Root Tag", func(t *testing.T) {
		type cfg struct {
			Meta     xmlserde.Meta `xmlserde:"sheetData,rename_all=snake_case"`
			MaxDepth int           `xmlserde:",attr"`
		}
		out, err := xmlserde.Marshal(cfg{MaxDepth: 2})
		require.NoError(t, err)
		require.Equal(t, `<sheet_data max_depth="2"/>`, string(out))

		var c cfg
		require.NoError(t, xmlserde.Unmarshal(out, &c))
		require.Equal(t, 2, c.MaxDepth)
	})

	t.Run("Policy Names Match Case-Insensitively On Input", func(t *testing.T) {
		type cfg struct {
			Meta     xmlserde.Meta `xmlserde:"cfg,rename_all=camelCase"`
			MaxDepth int           `xmlserde:",attr"`
		}
		var c cfg
		require.NoError(t, xmlserde.Unmarshal([]byte(`<cfg MAXDEPTH="7"/>`), &c))
		require.Equal(t, 7, c.MaxDepth)
	})
}
