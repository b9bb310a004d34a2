package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/trafine/internal/models"
)

type Config struct {
	URL      string
	Username string
	Password string
	Index    string

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func New(ctx context.Context, cfg Config) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	return &Index{es: client, index: cfg.Index}, nil
}

// IndexIncident upserts the incident document under its id, versioned
// externally by the incident revision. A write older than the stored document
// is dropped, so concurrent votes cannot leave a stale score behind.
func (i *Index) IndexIncident(ctx context.Context, inc models.Incident) error {
	body, err := json.Marshal(inc)
	if err != nil {
		return fmt.Errorf("index incident: %w", err)
	}

	res, err := i.es.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(inc.ID), 10)),
		i.es.Index.WithVersion(int(inc.Revision)+1),
		i.es.Index.WithVersionType("external"),
		i.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index incident: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("index incident: %s", res.Status())
	}
	return nil
}

func (i *Index) SearchIncidents(ctx context.Context, query string, from, size int) (int64, []models.Incident, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"type^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search incidents: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search incidents: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search incidents: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Incident `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search incidents: decode: %w", err)
	}

	items := make([]models.Incident, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		items[n] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
