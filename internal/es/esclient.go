package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/PANHAVORN22/Mini-mart/internal/config"
	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

const BeerIndex = "beers"

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es: cannot create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: cannot reach cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: cluster error: %s: %s", res.Status(), body)
	}

	return client, nil
}

func IndexBeer(ctx context.Context, client *elasticsearch.Client, beer *models.Beer) error {
	if client == nil {
		return nil
	}

	data, err := json.Marshal(beer)
	if err != nil {
		return fmt.Errorf("es: json.Marshal failed: %w", err)
	}

	res, err := client.Index(
		BeerIndex,
		bytes.NewReader(data),
		client.Index.WithDocumentID(strconv.Itoa(int(beer.ID))),
		client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index failed: %s", res.Status())
	}
	return nil
}

func DeleteBeer(ctx context.Context, client *elasticsearch.Client, beerID uint) error {
	if client == nil {
		return nil
	}

	res, err := client.Delete(
		BeerIndex,
		strconv.Itoa(int(beerID)),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete failed: %s", res.Status())
	}
	return nil
}
