package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// taggedFields calls fn for every exported field of input carrying a ColumnTag
// value other than "-". input must be a struct or a pointer to one.
func taggedFields(input any, fn func(tag string, value reflect.Value)) {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		tag := field.Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}

		fn(tag, v.Field(i))
	}
}

// StructTagValues lists the column names of a row type, in field order.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	taggedFields(input, func(tag string, _ reflect.Value) {
		result = append(result, tag)
	})
	return result
}

// StructToMap keys each tagged field's value by its column name, ready for
// squirrel's SetMap.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	taggedFields(input, func(tag string, value reflect.Value) {
		result[tag] = value.Interface()
	})
	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
