package model

// Document is a semi-structured analysis result produced by the language
// model. Its schema varies per pipeline (check-in, report, chat) but a
// failed generation or parse always yields an error document instead.
type Document map[string]interface{}

// ErrorDocument builds the minimal failure document. Pipelines detect it
// via IsError and skip persistence, but still return it to the caller.
func ErrorDocument(reason string) Document {
	return Document{"error": reason}
}

// IsError reports whether the document carries an error marker.
func (d Document) IsError() bool {
	_, ok := d["error"]
	return ok
}

// StringList reads a list-of-strings field, tolerating the loosely typed
// values the model returns. Missing or malformed fields yield an empty list.
func (d Document) StringList(key string) []string {
	out := make([]string, 0)
	items, ok := d[key].([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// List reads a raw list field, yielding an empty list when absent.
func (d Document) List(key string) []interface{} {
	items, ok := d[key].([]interface{})
	if !ok {
		return []interface{}{}
	}
	return items
}

// Float reads a numeric field, returning the fallback when absent.
func (d Document) Float(key string, fallback float64) float64 {
	if v, ok := d[key].(float64); ok {
		return v
	}
	return fallback
}
