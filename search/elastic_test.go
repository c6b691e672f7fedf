package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/vnkhanh/e-course-backend/logger"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*ElasticIndex, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewElasticIndex(es, "courses", logger.NewNop()), &reqs
}

func TestElasticIndexPutAndPatch(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	ctx := context.Background()

	doc := CourseDocument{Title: "Go", Instructor: "Ann Lee", Videos: []string{"intro"}}
	if err := idx.Put(ctx, "c1", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	title := "Go 2"
	if err := idx.Patch(ctx, "c1", CourseDocumentPatch{Title: &title}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if err := idx.Patch(ctx, "c1", CourseDocumentPatch{}); err != nil {
		t.Fatalf("empty Patch: %v", err)
	}

	if len(*reqs) != 2 {
		t.Fatalf("requests: want=2 got=%d", len(*reqs))
	}
	put := (*reqs)[0]
	if put.path != "/courses/_doc/c1" || !strings.Contains(put.body, `"enrollments":0`) {
		t.Fatalf("put request: %+v", put)
	}
	patch := (*reqs)[1]
	if patch.path != "/courses/_update/c1" {
		t.Fatalf("patch path: %s", patch.path)
	}
	var payload map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(patch.body), &payload); err != nil {
		t.Fatalf("patch body: %v", err)
	}
	if len(payload["doc"]) != 1 || payload["doc"]["title"] != "Go 2" {
		t.Fatalf("patch doc: %v", payload["doc"])
	}
}

func TestElasticIndexDeleteMissingIsSuccess(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	if err := idx.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestElasticIndexSurfacesServerErrors(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})
	err := idx.Put(context.Background(), "c1", CourseDocument{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "mapper_parsing_exception") {
		t.Fatalf("Put: want mapper error got=%v", err)
	}
}

func TestElasticIndexSearchDecodesHits(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"c1","_source":{"title":"Go","price":12.5,"videos":["a"]}}]}}`))
	})
	hits, err := idx.Search(context.Background(), CourseQuery{Query: "go"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "c1" || hits[0].Title != "Go" || hits[0].Price != 12.5 {
		t.Fatalf("hits: %+v", hits)
	}
	if got := (*reqs)[0].path; got != "/courses/_search" {
		t.Fatalf("search path: %s", got)
	}
}

func TestEnsureIndexCreatesMapping(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	if err := idx.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if len(*reqs) != 2 {
		t.Fatalf("requests: want=2 got=%d", len(*reqs))
	}
	create := (*reqs)[1]
	if create.method != http.MethodPut || create.path != "/courses" {
		t.Fatalf("create request: %s %s", create.method, create.path)
	}
	var body struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal([]byte(create.body), &body); err != nil {
		t.Fatalf("mapping body: %v", err)
	}
	props := body.Mappings.Properties
	if props["category"].Type != "keyword" || props["price"].Type != "double" || props["title"].Type != "text" {
		t.Fatalf("mapping: %+v", props)
	}
}

func TestEnsureIndexKeepsExistingIndex(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := idx.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if len(*reqs) != 1 || (*reqs)[0].method != http.MethodHead {
		t.Fatalf("requests: %+v", *reqs)
	}
}
