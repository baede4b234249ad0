package skema

import (
	"reflect"
	"strings"
)

// ResolveStructKey decides which object key a struct field binds to.
// Priority: `skema:"name=..."` tag, then the json tag name, then the field
// name. A json tag of "-" opts the field out (empty string).
func ResolveStructKey(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("skema"); ok {
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			if name, found := strings.CutPrefix(part, "name="); found && name != "" {
				return name
			}
		}
	}
	if tag, ok := sf.Tag.Lookup("json"); ok {
		name := tag
		if i := strings.IndexByte(tag, ','); i >= 0 {
			name = tag[:i]
		}
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return sf.Name
}
