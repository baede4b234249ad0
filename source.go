package skema

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON document and validates it. Number tokens are
// decoded as json.Number so the Number schema controls their interpretation.
// Malformed documents yield a single parse_error issue.
func ParseJSON(ctx context.Context, s Schema, data []byte) (any, error) {
	v, iss := decodeJSON(data)
	if iss != nil {
		return nil, iss
	}
	return Parse(ctx, s, v)
}

// SafeParseJSON is the non-throwing form of ParseJSON.
func SafeParseJSON(ctx context.Context, s Schema, data []byte) (Result, error) {
	v, iss := decodeJSON(data)
	if iss != nil {
		return Result{Issues: iss}, nil
	}
	return SafeParse(ctx, s, v)
}

// ParseJSONAsync decodes a JSON document and validates it with async stages
// enabled.
func ParseJSONAsync(ctx context.Context, s Schema, data []byte) (any, error) {
	v, iss := decodeJSON(data)
	if iss != nil {
		return nil, iss
	}
	return ParseAsync(ctx, s, v)
}

// ParseYAML decodes a YAML document and validates it.
func ParseYAML(ctx context.Context, s Schema, data []byte) (any, error) {
	v, iss := decodeYAML(data)
	if iss != nil {
		return nil, iss
	}
	return Parse(ctx, s, v)
}

// SafeParseYAML is the non-throwing form of ParseYAML.
func SafeParseYAML(ctx context.Context, s Schema, data []byte) (Result, error) {
	v, iss := decodeYAML(data)
	if iss != nil {
		return Result{Issues: iss}, nil
	}
	return SafeParse(ctx, s, v)
}

func decodeJSON(data []byte) (any, Issues) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{{Path: Path{}, Code: CodeParseError, Message: "invalid JSON document", Cause: err}}
	}
	return v, nil
}

func decodeYAML(data []byte) (any, Issues) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, Issues{{Path: Path{}, Code: CodeParseError, Message: "invalid YAML document", Cause: err}}
	}
	return normalizeYAML(v), nil
}

// normalizeYAML rewrites the interface-keyed maps yaml.v3 can produce into
// the map[string]any/[]any shapes the engine works on.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				key = fmtKey(k)
			}
			out[key] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func fmtKey(k any) string {
	switch t := k.(type) {
	case string:
		return t
	default:
		b, err := yaml.Marshal(k)
		if err != nil {
			return ""
		}
		return string(bytes.TrimSpace(b))
	}
}
