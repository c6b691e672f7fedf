package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/vnkhanh/e-course-backend/logger"
)

type ElasticIndex struct {
	es    *elasticsearch.Client
	index string
	log   *logger.Logger
}

func NewElasticIndex(es *elasticsearch.Client, index string, baseLog *logger.Logger) *ElasticIndex {
	return &ElasticIndex{es: es, index: index, log: baseLog.With("component", "ElasticIndex", "index", index)}
}

// EnsureIndex creates the index with CourseMapping when it does not exist yet. An
// existing index is left as it is.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	res, err := e.es.Indices.Exists([]string{e.index}, e.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", e.index, res.Status())
	}

	body, err := encode(CourseMapping())
	if err != nil {
		return err
	}
	res, err = e.es.Indices.Create(e.index,
		e.es.Indices.Create.WithContext(ctx),
		e.es.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg := readError(res)
		// another instance created it between the two calls
		if strings.Contains(msg, "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s: %s", e.index, msg)
	}
	e.log.Info("search index created")
	return nil
}

func (e *ElasticIndex) Put(ctx context.Context, id string, doc CourseDocument) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	res, err := e.es.Index(e.index, body,
		e.es.Index.WithContext(ctx),
		e.es.Index.WithDocumentID(id),
	)
	return e.check("index", id, res, err, false)
}

func (e *ElasticIndex) Patch(ctx context.Context, id string, patch CourseDocumentPatch) error {
	if patch.Empty() {
		return nil
	}
	body, err := encode(map[string]interface{}{"doc": patch})
	if err != nil {
		return err
	}
	res, err := e.es.Update(e.index, id, body,
		e.es.Update.WithContext(ctx),
		e.es.Update.WithRetryOnConflict(3),
	)
	return e.check("update", id, res, err, false)
}

func (e *ElasticIndex) Delete(ctx context.Context, id string) error {
	res, err := e.es.Delete(e.index, id, e.es.Delete.WithContext(ctx))
	return e.check("delete", id, res, err, true)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Source CourseDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticIndex) Search(ctx context.Context, q CourseQuery) ([]CourseHit, error) {
	body, err := encode(BuildCourseQuery(q))
	if err != nil {
		return nil, err
	}
	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", e.index, readError(res))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits := make([]CourseHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, CourseHit{ID: h.ID, CourseDocument: h.Source})
	}
	return hits, nil
}

func (e *ElasticIndex) Ping(ctx context.Context) error {
	res, err := e.es.Ping(e.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: %s", res.Status())
	}
	return nil
}

func (e *ElasticIndex) check(op, id string, res *esapi.Response, err error, missingOK bool) error {
	if err != nil {
		return fmt.Errorf("%s %s/%s: %w", op, e.index, id, err)
	}
	defer res.Body.Close()
	if missingOK && res.StatusCode == http.StatusNotFound {
		e.log.Debug("document already absent", "op", op, "id", id)
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("%s %s/%s: %s", op, e.index, id, readError(res))
	}
	return nil
}

func encode(v interface{}) (io.Reader, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return buf, nil
}

func readError(res *esapi.Response) string {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if len(b) == 0 {
		return res.Status()
	}
	return res.Status() + " " + string(b)
}
