package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/olivere/elastic/v7"

	"pamojaBack/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":        {"type": "keyword"},
      "source":    {"type": "keyword"},
      "category":  {"type": "text"},
      "name":      {"type": "text"},
      "description": {"type": "text"},
      "location":  {"type": "text"},
      "latitude":  {"type": "double"},
      "longitude": {"type": "double"}
    }
  }
}`

// ElasticStore answers map searches from an Elasticsearch index mirroring
// the entity feed.
type ElasticStore struct {
	Client *elastic.Client
	Index  string
}

// NewElasticStore connects to the given URL.
func NewElasticStore(url, index string) (*ElasticStore, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, err
	}
	return &ElasticStore{Client: client, Index: index}, nil
}

// NewElasticStoreWithClient wraps an existing client.
func NewElasticStoreWithClient(client *elastic.Client, index string) *ElasticStore {
	return &ElasticStore{Client: client, Index: index}
}

// EnsureIndex creates the index with its mapping when missing.
func (es *ElasticStore) EnsureIndex(ctx context.Context) error {
	exists, err := es.Client.IndexExists(es.Index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	createIndex, err := es.Client.CreateIndex(es.Index).BodyString(indexMapping).Do(ctx)
	if err != nil {
		return err
	}
	if !createIndex.Acknowledged {
		log.Println("CreateIndex was not acknowledged. Check that timeout value is correct.")
	}
	return nil
}

// IndexEntities bulk-indexes a feed snapshot.
func (es *ElasticStore) IndexEntities(ctx context.Context, entities []models.GeoEntity) error {
	if len(entities) == 0 {
		return nil
	}
	bulkRequest := es.Client.Bulk()
	for _, e := range entities {
		req := elastic.NewBulkIndexRequest().Index(es.Index).Id(e.Source + ":" + e.ID).Doc(e)
		bulkRequest = bulkRequest.Add(req)
	}
	bulkResponse, err := bulkRequest.Do(ctx)
	if err != nil {
		return err
	}
	if bulkResponse != nil {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					log.Printf("Failed to index entity: %s", op.Error.Reason)
				}
			}
		}
	}
	return nil
}

// Search runs a match query scoped to the given column, or a multi-match
// over name, category and location for "all".
func (es *ElasticStore) Search(ctx context.Context, query, column string) ([]models.GeoEntity, error) {
	var q elastic.Query
	switch column {
	case models.SearchColumnName:
		q = elastic.NewMatchQuery("name", query)
	case models.SearchColumnCategory:
		q = elastic.NewMatchQuery("category", query)
	case models.SearchColumnLocation:
		q = elastic.NewMatchQuery("location", query)
	default:
		q = elastic.NewMultiMatchQuery(query, "name", "category", "location")
	}

	searchResult, err := es.Client.Search().
		Index(es.Index).
		Query(q).
		Size(500).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	var entities []models.GeoEntity
	for _, hit := range searchResult.Hits.Hits {
		var e models.GeoEntity
		if err := json.Unmarshal(hit.Source, &e); err != nil {
			log.Printf("Error unmarshalling hit source: %s", err)
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}
