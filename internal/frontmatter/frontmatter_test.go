package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		fm     string
		body   string
		had    bool
		errMsg string
	}{
		{name: "no frontmatter", input: "# Title\n\nHello\n", body: "# Title\n\nHello\n"},
		{name: "yaml block", input: "---\ntitle: Lista\n---\n# Title\n", fm: "title: Lista\n", body: "# Title\n", had: true},
		{name: "crlf", input: "---\r\ntitle: x\r\n---\r\n# T\r\n", fm: "title: x\r\n", body: "# T\r\n", had: true},
		{name: "empty block", input: "---\n---\n# Title\n", body: "# Title\n", had: true},
		{name: "closing at eof", input: "---\ntitle: x\n---", fm: "title: x\n", had: true},
		{name: "missing close", input: "---\ntitle: x\n# Title\n", errMsg: "closing delimiter"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fm, body, had, err := Split([]byte(tc.input))
			if tc.errMsg != "" {
				require.ErrorIs(t, err, ErrMissingClosingDelimiter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.had, had)
			assert.Equal(t, tc.fm, string(fm))
			assert.Equal(t, tc.body, string(body))
		})
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Renderizado de Listas\nsidebarDepth: 3\n---\n# Listas\n"))
	require.NoError(t, err)
	assert.True(t, doc.HadFrontmatter)
	title, ok := doc.String("title")
	require.True(t, ok)
	assert.Equal(t, "Renderizado de Listas", title)
	assert.Equal(t, 3, doc.Fields["sidebarDepth"])
	assert.Equal(t, "# Listas\n", string(doc.Body))

	_, ok = doc.String("sidebarDepth")
	assert.False(t, ok)

	_, err = Parse([]byte("---\n: [\n---\n"))
	require.Error(t, err)
}

func TestCanonical_SortsAndExcludes(t *testing.T) {
	fields := map[string]any{
		"title":       "Guía",
		"fingerprint": "abc",
		"meta":        map[string]any{"z": 1, "a": []any{"x", map[string]any{"b": 2, "a": 1}}},
	}
	out, err := Canonical(fields, "fingerprint")
	require.NoError(t, err)
	assert.NotContains(t, out, "fingerprint")
	assert.Less(t, strings.Index(out, "meta:"), strings.Index(out, "title: Guía"))
	assert.Less(t, strings.Index(out, "  a:"), strings.Index(out, "  z: 1"))
	assert.Less(t, strings.Index(out, "a: 1"), strings.Index(out, "b: 2"))
	assert.False(t, strings.HasSuffix(out, "\n"))

	again, err := Canonical(fields, "fingerprint")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	empty, err := Canonical(map[string]any{"fingerprint": "abc"}, "fingerprint")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
