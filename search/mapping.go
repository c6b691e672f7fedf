package search

// CourseMapping is the index body for course documents. category is a keyword so the
// term filter matches whole names; price is a double even when the first document
// carries a whole-number price.
func CourseMapping() map[string]interface{} {
	text := map[string]interface{}{"type": "text"}
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"dynamic": "strict",
			"properties": map[string]interface{}{
				"title":       text,
				"description": text,
				"instructor":  text,
				"videos":      text,
				"category":    map[string]interface{}{"type": "keyword"},
				"price":       map[string]interface{}{"type": "double"},
				"enrollments": map[string]interface{}{"type": "long"},
			},
		},
	}
}
