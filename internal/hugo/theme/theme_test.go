package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTheme struct{ NullTheme }

func TestRegisterTheme_IgnoresDuplicates(t *testing.T) {
	first := fakeTheme{NullTheme{ThemeName: "fake-dup"}}
	RegisterTheme(first)
	RegisterTheme(fakeTheme{NullTheme{ThemeName: "fake-dup"}})
	RegisterTheme(nil)

	assert.Equal(t, first, Get("fake-dup"))
	assert.Contains(t, Names(), "fake-dup")
	assert.Nil(t, Get("missing"))
}

func TestNullTheme(t *testing.T) {
	n := NullTheme{ThemeName: "mytheme"}
	assert.Equal(t, "mytheme", n.Features().Name)
	assert.Equal(t, DefaultHeadPartial, n.Features().HeadPartial)
	assert.False(t, n.Features().UsesModules)
}

func TestSetDefault(t *testing.T) {
	params := map[string]any{"search": false}
	SetDefault(params, "search", true)
	SetDefault(params, "logo", "/logo.png")
	assert.Equal(t, false, params["search"])
	assert.Equal(t, "/logo.png", params["logo"])
}
