package search

import "context"

// CourseDocument is the denormalized course record kept in the search index.
type CourseDocument struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Instructor  string   `json:"instructor"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Videos      []string `json:"videos"`
	Enrollments int64    `json:"enrollments"`
}

// CourseDocumentPatch is a partial update. Nil fields are left untouched.
type CourseDocumentPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Instructor  *string   `json:"instructor,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Videos      *[]string `json:"videos,omitempty"`
	Enrollments *int64    `json:"enrollments,omitempty"`
}

func (p CourseDocumentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Instructor == nil &&
		p.Category == nil && p.Price == nil && p.Videos == nil && p.Enrollments == nil
}

type CourseQuery struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Order    string
	Size     int
}

type CourseHit struct {
	ID string `json:"id"`
	CourseDocument
}

// Index is the external course index. Implementations must treat deleting a missing
// document as success.
type Index interface {
	Put(ctx context.Context, id string, doc CourseDocument) error
	Patch(ctx context.Context, id string, patch CourseDocumentPatch) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q CourseQuery) ([]CourseHit, error)
	Ping(ctx context.Context) error
}
