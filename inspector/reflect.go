// Package inspector turns tagged component structs into display fields.
//
// Fields are described with an inspect struct tag:
//
//	`inspect:"bar"`
//	`inspect:"bar,max:200"`
//	`inspect:"label,fmt:%.1f"`
//	`inspect:"skip"`
package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetBool
	WidgetSkip
)

func (w Widget) String() string {
	switch w {
	case WidgetLabel:
		return "label"
	case WidgetBar:
		return "bar"
	case WidgetBool:
		return "bool"
	case WidgetSkip:
		return "skip"
	default:
		return "auto"
	}
}

// Tag is a parsed inspect tag.
type Tag struct {
	Widget Widget
	Format string
	Max    float64
}

// Field is one exported component field ready for display.
type Field struct {
	Name   string
	Value  any
	Widget Widget
	Format string
	Max    float64 // Bar full scale
}

// ParseTag parses an inspect tag. Unknown options are ignored.
func ParseTag(tag string) Tag {
	t := Tag{Max: 1}
	if tag == "" {
		return t
	}

	parts := strings.Split(tag, ",")
	switch strings.TrimSpace(parts[0]) {
	case "label":
		t.Widget = WidgetLabel
	case "bar":
		t.Widget = WidgetBar
	case "bool":
		t.Widget = WidgetBool
	case "skip":
		t.Widget = WidgetSkip
	}

	for _, part := range parts[1:] {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		switch key {
		case "fmt":
			t.Format = val
		case "max":
			if m, err := strconv.ParseFloat(val, 64); err == nil && m > 0 {
				t.Max = m
			}
		}
	}
	return t
}

// ExtractFields lists the exported, non-skipped fields of a struct or
// struct pointer in declaration order.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	fields := make([]Field, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := ParseTag(sf.Tag.Get("inspect"))
		if tag.Widget == WidgetSkip {
			continue
		}
		fv := v.Field(i)
		if tag.Widget == WidgetAuto {
			tag.Widget = detectWidget(fv.Kind())
		}
		fields = append(fields, Field{
			Name:   sf.Name,
			Value:  fv.Interface(),
			Widget: tag.Widget,
			Format: tag.Format,
			Max:    tag.Max,
		})
	}
	return fields
}

func detectWidget(k reflect.Kind) Widget {
	if k == reflect.Bool {
		return WidgetBool
	}
	return WidgetLabel
}

// Text formats the field value.
func (f Field) Text() string {
	return FormatValue(f.Value, f.Format)
}

// Ratio is the field value over its full scale, clamped to [0, 1].
// Non-numeric values report 0.
func (f Field) Ratio() float64 {
	v, ok := Float(f.Value)
	if !ok || f.Max <= 0 {
		return 0
	}
	return min(1, max(0, v/f.Max))
}

// FormatValue formats a value with format, or with two decimals for
// floats when format is empty.
func FormatValue(value any, format string) string {
	if format != "" {
		return fmt.Sprintf(format, value)
	}
	switch v := value.(type) {
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(value)
	}
}

// Float converts numeric values to float64.
func Float(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}
