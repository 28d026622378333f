package chart

import (
	"github.com/iancoleman/strcase"

	"github.com/mcncl/vizpath/internal/path"
)

// Display name styles.
const (
	StyleRaw        = "raw"
	StyleCamel      = "camel"
	StyleLowerCamel = "lower_camel"
	StyleSnake      = "snake"
	StyleKebab      = "kebab"
	StyleWords      = "words"
)

// DisplayName returns the short name shown for a parameter: the last
// segment of its path in the given style. JSONPath expressions and
// malformed paths are shown as written.
func DisplayName(param, style string) string {
	terminal, ok := path.Parse(param).Terminal()
	if !ok {
		return param
	}
	return applyStyle(terminal.Key, style)
}

func applyStyle(name, style string) string {
	switch style {
	case StyleCamel:
		return strcase.ToCamel(name)
	case StyleLowerCamel:
		return strcase.ToLowerCamel(name)
	case StyleSnake:
		return strcase.ToSnake(name)
	case StyleKebab:
		return strcase.ToKebab(name)
	case StyleWords:
		return strcase.ToDelimited(name, ' ')
	default:
		return name
	}
}
