package dsl

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	skema "github.com/skemalib/skema"
)

// TrimSpace wraps s in a transform trimming leading and trailing whitespace
// from string outputs. Non-string outputs pass through untouched.
func TrimSpace(s skema.Schema) skema.Schema {
	return mapString(s, strings.TrimSpace)
}

// ToLower wraps s in a transform lower-casing string outputs.
func ToLower(s skema.Schema) skema.Schema {
	return mapString(s, strings.ToLower)
}

// ToUpper wraps s in a transform upper-casing string outputs.
func ToUpper(s skema.Schema) skema.Schema {
	return mapString(s, strings.ToUpper)
}

// NFC wraps s in a transform normalizing string outputs to Unicode NFC.
func NFC(s skema.Schema) skema.Schema {
	return mapString(s, norm.NFC.String)
}

func mapString(s skema.Schema, fn func(string) string) skema.Schema {
	return Transform(s, func(v any) (any, error) {
		if str, ok := v.(string); ok {
			return fn(str), nil
		}
		return v, nil
	})
}
