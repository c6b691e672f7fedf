package search

import "strings"

const (
	defaultMaxPrice = 9999
	defaultSize     = 20
	maxSize         = 100
)

// sortable lists the document fields a search may be ordered by. Text fields are
// excluded because they carry no doc values.
var sortable = map[string]bool{
	"price":       true,
	"enrollments": true,
}

// BuildCourseQuery renders q as an Elasticsearch request body.
func BuildCourseQuery(q CourseQuery) map[string]interface{} {
	must := []interface{}{}
	if text := strings.TrimSpace(q.Query); text != "" {
		should := []interface{}{
			map[string]interface{}{"match_phrase_prefix": map[string]interface{}{"title": text}},
		}
		for _, field := range []string{"title", "description", "instructor", "videos"} {
			should = append(should, map[string]interface{}{
				"match": map[string]interface{}{
					field: map[string]interface{}{"query": text, "fuzziness": "AUTO"},
				},
			})
		}
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		})
	}

	filter := []interface{}{}
	if q.Category != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category": q.Category}})
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		gte, lte := 0.0, float64(defaultMaxPrice)
		if q.MinPrice != nil {
			gte = *q.MinPrice
		}
		if q.MaxPrice != nil {
			lte = *q.MaxPrice
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price": map[string]interface{}{"gte": gte, "lte": lte}},
		})
	}

	sort := []interface{}{}
	if sortable[q.SortBy] {
		order := "desc"
		if strings.EqualFold(q.Order, "asc") {
			order = "asc"
		}
		sort = append(sort, map[string]interface{}{q.SortBy: map[string]interface{}{"order": order}})
	}

	size := q.Size
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}

	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": sort,
	}
}
