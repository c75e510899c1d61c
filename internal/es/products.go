package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/crafthaus/shop-api/internal/models"
)

// ProductIndex keeps the product search index in step with the catalog.
type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{Client: client, Index: index}
}

func (p *ProductIndex) IndexProduct(ctx context.Context, product *models.Product) error {
	doc, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	res, err := p.Client.Index(
		p.Index,
		bytes.NewReader(doc),
		p.Client.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
		p.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, id uint) error {
	res, err := p.Client.Delete(
		p.Index,
		strconv.FormatUint(uint64(id), 10),
		p.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product from index: %s", res.Status())
	}
	return nil
}

func (p *ProductIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	res, err := p.Client.Search(
		p.Client.Search.WithContext(ctx),
		p.Client.Search.WithIndex(p.Index),
		p.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
