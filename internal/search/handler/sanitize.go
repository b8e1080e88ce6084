package handler

import (
	"reflect"
	"strings"
)

const maxAttributeLen = 200

// sanitize cleans all string fields in a struct in place: HTML-special and
// path-traversal characters are stripped, repeated dots collapsed, and the
// value truncated to maxAttributeLen runes.
func sanitize(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Kind() == reflect.String && field.CanSet() {
			field.SetString(clean(field.String()))
		}
	}
}

func clean(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	prevDot := false
	kept := 0
	for _, r := range s {
		if kept == maxAttributeLen {
			break
		}
		switch r {
		case '<', '>', '"', '\'', '&', ';', '/', '\\':
			continue
		case '.':
			if prevDot {
				continue
			}
			prevDot = true
		default:
			prevDot = false
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}
