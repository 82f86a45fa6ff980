package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType identifies the kind of value a Field carries.
type FieldType uint8

const (
	StringType FieldType = iota
	Int64Type
	Float64Type
	BoolType
	TimeType
	DurationType
	AnyType
)

// Field is a key-value pair attached to an Entry. Values are encoded
// into fixed-size numeric slots where possible so common types avoid
// an interface allocation.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Type: StringType, Str: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Type: Int64Type, Int64: int64(value)}
}

// Int64 creates a 64-bit integer field
func Int64(key string, value int64) Field {
	return Field{Key: key, Type: Int64Type, Int64: value}
}

// Float64 creates a float field
func Float64(key string, value float64) Field {
	return Field{Key: key, Type: Float64Type, Float64: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	var v int64
	if value {
		v = 1
	}
	return Field{Key: key, Type: BoolType, Int64: v}
}

// Time creates a time field
func Time(key string, value time.Time) Field {
	return Field{Key: key, Type: TimeType, Int64: value.UnixNano()}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Type: DurationType, Int64: int64(value)}
}

// Any creates a field holding an arbitrary value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Type: AnyType, Any: value}
}

// StringValue renders the field's value as a string.
func (f Field) StringValue() string {
	switch f.Type {
	case StringType:
		return f.Str
	case Int64Type:
		return strconv.FormatInt(f.Int64, 10)
	case Float64Type:
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.FormatBool(f.Int64 == 1)
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339)
	case DurationType:
		return time.Duration(f.Int64).String()
	case AnyType:
		return fmt.Sprintf("%v", f.Any)
	default:
		return ""
	}
}
