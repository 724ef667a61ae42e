// internal/artifacts/elasticsearch.go
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchStore keeps each artifact as a document whose id is the
// artifact name and whose payload field holds the serialized JSON.
type ElasticsearchStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchStore(client *elasticsearch.Client, index string) *ElasticsearchStore {
	return &ElasticsearchStore{client: client, index: index}
}

type artifactDocument struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

func (s *ElasticsearchStore) Load(ctx context.Context, name string) ([]byte, error) {
	res, err := s.client.Get(s.index, name, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch get error: %s", res.Status())
	}

	var body struct {
		Found  bool             `json:"found"`
		Source artifactDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode elasticsearch response: %w", err)
	}
	if !body.Found {
		return nil, ErrNotFound
	}
	return []byte(body.Source.Payload), nil
}

func (s *ElasticsearchStore) Put(ctx context.Context, name string, data []byte) error {
	doc, err := json.Marshal(artifactDocument{Name: name, Payload: string(data)})
	if err != nil {
		return err
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(doc),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(name),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}
