package dsl

import (
	"context"
	"fmt"
	"reflect"
	"time"

	skema "github.com/skemalib/skema"
)

// Binder adapts an object schema to a struct type. Keys bind via
// skema.ResolveStructKey, so `skema:"name=..."` and json tags both work.
type Binder[T any] struct {
	obj *ObjectSchema
}

// Bind returns a Binder producing T values from obj.
func Bind[T any](obj *ObjectSchema) Binder[T] { return Binder[T]{obj: obj} }

// Schema exposes the underlying object schema.
func (b Binder[T]) Schema() *ObjectSchema { return b.obj }

// Parse validates v synchronously and decodes the result into T.
func (b Binder[T]) Parse(ctx context.Context, v any) (T, error) {
	var zero T
	out, err := skema.Parse(ctx, b.obj, v)
	if err != nil {
		return zero, err
	}
	return decodeInto[T](out)
}

// ParseAsync validates v with async stages enabled and decodes the result
// into T.
func (b Binder[T]) ParseAsync(ctx context.Context, v any) (T, error) {
	var zero T
	out, err := skema.ParseAsync(ctx, b.obj, v)
	if err != nil {
		return zero, err
	}
	return decodeInto[T](out)
}

func decodeInto[T any](v any) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if err := assignValue(rv, v); err != nil {
		return out, fmt.Errorf("skema: bind: %w", err)
	}
	return out, nil
}

func assignValue(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assignValue(dst.Elem(), v)
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		dst.Set(reflect.ValueOf(v))
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == dst.Type() {
		dst.Set(rv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		if dst.Type() == reflect.TypeOf(time.Time{}) {
			if t, ok := v.(time.Time); ok {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
			return fmt.Errorf("cannot decode %T into time.Time", v)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		return assignStruct(dst, m)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		dst.SetString(s)
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		dst.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		dst.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		dst.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := toFloat(v)
		if !ok || f < 0 {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		dst.SetUint(uint64(f))
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		out := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for i, el := range arr {
			if err := assignValue(out.Index(i), el); err != nil {
				return err
			}
		}
		dst.Set(out)
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for k, el := range m {
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assignValue(ev, el); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
		}
		dst.Set(out)
	default:
		return fmt.Errorf("cannot decode %T into %s", v, dst.Type())
	}
	return nil
}

func assignStruct(dst reflect.Value, m map[string]any) error {
	rt := dst.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := skema.ResolveStructKey(sf)
		if key == "" {
			continue
		}
		val, ok := m[key]
		if !ok {
			continue
		}
		if err := assignValue(dst.Field(i), val); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}
