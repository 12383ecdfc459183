package schema

// Accessors for decoded field maps. They tolerate absent fields and return
// zero values, matching the optional-by-default wire semantics.

// Str returns the named string field or "".
func Str(m map[string]any, name string) string {
	s, _ := m[name].(string)
	return s
}

// BoolField returns the named bool field or false.
func BoolField(m map[string]any, name string) bool {
	b, _ := m[name].(bool)
	return b
}

// IntField returns the named integer field or 0.
func IntField(m map[string]any, name string) int64 {
	n, _ := m[name].(int64)
	return n
}

// FloatField returns the named double/float field or 0.
func FloatField(m map[string]any, name string) float64 {
	f, _ := m[name].(float64)
	return f
}

// Msg returns the named nested message or nil.
func Msg(m map[string]any, name string) map[string]any {
	v, _ := m[name].(map[string]any)
	return v
}

// Msgs returns the named repeated message field as a slice of field maps.
func Msgs(m map[string]any, name string) []map[string]any {
	list, _ := m[name].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if mm, ok := e.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}

// Strs returns the named repeated string field.
func Strs(m map[string]any, name string) []string {
	list, _ := m[name].([]any)
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
