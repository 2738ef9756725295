package types

import "fmt"

// A Field is one displayable name/value pair of a decoded structure.
type Field struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Fielder is implemented by every decoded structure that can be printed
// generically.
type Fielder interface {
	Fields() []Field
}

// F builds a Field, formatting v with %v.
func F(name string, v any) Field {
	return Field{Name: name, Value: fmt.Sprint(v)}
}

// Hex builds a Field with v formatted as 0x-prefixed hex.
func Hex(name string, v uint64) Field {
	return Field{Name: name, Value: fmt.Sprintf("%#x", v)}
}
