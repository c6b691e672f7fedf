package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/repos/testutil"
	"github.com/vnkhanh/e-course-backend/search"
)

var errIndexDown = errors.New("index unavailable")

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]search.CourseDocument
	patches map[string][]search.CourseDocumentPatch
	fail    bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		docs:    map[string]search.CourseDocument{},
		patches: map[string][]search.CourseDocumentPatch{},
	}
}

func (f *fakeIndex) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeIndex) doc(id uuid.UUID) (search.CourseDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id.String()]
	return d, ok
}

func (f *fakeIndex) Put(_ context.Context, id string, doc search.CourseDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errIndexDown
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) Patch(_ context.Context, id string, patch search.CourseDocumentPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errIndexDown
	}
	f.patches[id] = append(f.patches[id], patch)
	doc := f.docs[id]
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Videos != nil {
		doc.Videos = *patch.Videos
	}
	if patch.Price != nil {
		doc.Price = *patch.Price
	}
	if patch.Enrollments != nil {
		doc.Enrollments = *patch.Enrollments
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errIndexDown
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, search.CourseQuery) ([]search.CourseHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errIndexDown
	}
	hits := []search.CourseHit{}
	for id, d := range f.docs {
		hits = append(hits, search.CourseHit{ID: id, CourseDocument: d})
	}
	return hits, nil
}

func (f *fakeIndex) Ping(context.Context) error { return nil }

type memQueue struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func newMemQueue() *memQueue { return &memQueue{ids: map[uuid.UUID]struct{}{}} }

func (q *memQueue) Push(_ context.Context, ids ...uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		q.ids[id] = struct{}{}
	}
	return nil
}

func (q *memQueue) Pop(_ context.Context, n int) ([]uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := []uuid.UUID{}
	for id := range q.ids {
		if len(out) == n {
			break
		}
		out = append(out, id)
		delete(q.ids, id)
	}
	return out, nil
}

func (q *memQueue) has(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.ids[id]
	return ok
}

type sentEvent struct {
	userID  uuid.UUID
	payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *recordingBroadcaster) SendToUser(userID uuid.UUID, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{userID: userID, payload: payload})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for _, e := range b.events {
		if pe, ok := e.payload.(ProgressEvent); ok {
			out = append(out, pe.Type)
		}
	}
	return out
}

// failingVideoRepo fails every video insert.
type failingVideoRepo struct {
	repos.VideoRepo
}

func (failingVideoRepo) Create(context.Context, *gorm.DB, []*models.Video) error {
	return errors.New("injected video insert failure")
}

type fixture struct {
	db        *gorm.DB
	rs        repos.Set
	index     *fakeIndex
	queue     *memQueue
	events    *recordingBroadcaster
	progress  ProgressService
	tests     TestService
	indexer   CourseIndexer
	courses   CourseService
	videos    VideoService
	enrollers EnrollmentService
}

func newFixture(t *testing.T, tweak ...func(*repos.Set)) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.NewSet(db, log)
	for _, fn := range tweak {
		fn(&rs)
	}

	f := &fixture{
		db:     db,
		rs:     rs,
		index:  newFakeIndex(),
		queue:  newMemQueue(),
		events: &recordingBroadcaster{},
	}
	notify := NewProgressNotifier(f.events)
	f.progress = NewProgressService(rs.Progress, rs.Videos, notify, log)
	f.tests = NewTestService(db, rs.Tests, rs.Videos, f.progress, notify, log)
	f.indexer = NewCourseIndexer(f.index, f.queue, rs, 0, log)
	f.courses = NewCourseService(db, rs, f.progress, f.indexer, log)
	f.videos = NewVideoService(db, rs, f.progress, f.indexer, log)
	f.enrollers = NewEnrollmentService(db, rs, f.indexer, log)
	return f
}

func fourOptions(correct string) []string {
	return []string{correct, "wrong-1", "wrong-2", "wrong-3"}
}

func sampleCourseInput(categoryID uuid.UUID) CourseInput {
	price := 49.5
	return CourseInput{
		Title:          "Practical Go",
		Description:    "Build services in Go from scratch",
		Thumbnail:      "https://cdn.example.com/go.png",
		CourseContents: []string{"basics", "concurrency"},
		CategoryID:     categoryID,
		Price:          &price,
		Videos: []VideoInput{
			{Title: "Setup", VideoURL: "https://cdn.example.com/v0.mp4"},
			{
				Title:    "Goroutines",
				VideoURL: "https://cdn.example.com/v1.mp4",
				Test: &TestInput{
					Questions: []QuestionInput{
						{Text: "keyword?", Options: fourOptions("go"), CorrectAnswer: "go"},
						{Text: "channel op?", Options: fourOptions("<-"), CorrectAnswer: "<-"},
					},
					Challenge: &ChallengeInput{Description: "write a worker pool"},
				},
			},
			{
				Title:    "Channels",
				VideoURL: "https://cdn.example.com/v2.mp4",
				Test: &TestInput{
					Questions: []QuestionInput{
						{Text: "close?", Options: fourOptions("close"), CorrectAnswer: "close"},
					},
				},
			},
		},
	}
}
