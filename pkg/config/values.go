package config

// Stored values come back from JSON decoding, so numbers arrive as
// float64 and lists as []any. These helpers coerce them.

func stringValue(data map[string]any, key string) (string, bool) {
	v, ok := data[key].(string)
	return v, ok
}

func intValue(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func stringSliceValue(data map[string]any, key string) ([]string, bool) {
	raw, ok := data[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
