package config

import (
	"git.home.luguber.info/inful/docnav/internal/foundation/normalization"
)

// OutputFormat names one emitter.
type OutputFormat string

const (
	FormatVuePress OutputFormat = "vuepress"
	FormatYAML     OutputFormat = "yaml"
	FormatHugo     OutputFormat = "hugo"
)

var outputFormatNormalizer = normalization.NewNormalizer(map[string]OutputFormat{
	"vuepress": FormatVuePress,
	"json":     FormatVuePress,
	"yaml":     FormatYAML,
	"yml":      FormatYAML,
	"hugo":     FormatHugo,
}, FormatVuePress)

// ParseOutputFormat maps raw onto an OutputFormat; "json" is an alias for vuepress.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	return outputFormatNormalizer.NormalizeWithError(raw)
}

// OutputFormats lists the accepted format names.
func OutputFormats() []string {
	return outputFormatNormalizer.ValidKeys()
}
