package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/shopspring/decimal"
)

// rawProducto is the wire shape of the external inventory API ("server Geo").
// Only the fields we map are declared; the rest of the payload is ignored.
type rawProducto struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	PriceSale float64 `json:"price_sale"`
	Category  struct {
		Name string `json:"name"`
	} `json:"category"`
	Inventories []struct {
		Stock int `json:"stock"`
	} `json:"inventories"`
}

type catalogoPage struct {
	Data struct {
		Products []rawProducto `json:"products"`
	} `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		NextPage    int `json:"next_page"`
		TotalPages  int `json:"total_pages"`
	} `json:"meta"`
}

// CatalogoClient fetches the product catalog from the external inventory API.
// The API is paginated; FetchProductos walks every page starting at 1 and
// stops when next_page is -1 or does not advance.
type CatalogoClient struct {
	baseURL     string
	token       string
	company     string
	categoriaID int
	// pagePause throttles successive page requests so we do not hammer
	// the supplier's API. Zeroed in tests.
	pagePause  time.Duration
	httpClient *http.Client
}

func NewCatalogoClient(baseURL, token, company string, categoriaID int) *CatalogoClient {
	return &CatalogoClient{
		baseURL:     baseURL,
		token:       token,
		company:     company,
		categoriaID: categoriaID,
		pagePause:   500 * time.Millisecond,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchProductos returns the full normalized catalog.
func (c *CatalogoClient) FetchProductos(ctx context.Context) ([]model.Producto, error) {
	var all []model.Producto
	page := 1

	for {
		p, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, raw := range p.Data.Products {
			all = append(all, parseRawProducto(raw))
		}

		if p.Meta.NextPage == -1 || p.Meta.NextPage <= p.Meta.CurrentPage {
			break
		}
		page = p.Meta.NextPage

		if c.pagePause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pagePause):
			}
		}
	}

	return all, nil
}

func (c *CatalogoClient) fetchPage(ctx context.Context, page int) (*catalogoPage, error) {
	url := fmt.Sprintf("%s/api/v1/productos?category_id=%d&page=%d", c.baseURL, c.categoriaID, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalogo: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Company", c.company)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogo: API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogo: API returned %d on page %d", resp.StatusCode, page)
	}

	var result catalogoPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("catalogo: decode page %d: %w", page, err)
	}
	return &result, nil
}

// parseRawProducto maps one raw API record to the normalized Producto.
// Stock is the sum over every warehouse inventory.
func parseRawProducto(raw rawProducto) model.Producto {
	stock := 0
	for _, inv := range raw.Inventories {
		stock += inv.Stock
	}
	return model.Producto{
		SKU:       raw.Code,
		Nombre:    raw.Name,
		Categoria: raw.Category.Name,
		Precio:    decimal.NewFromFloat(raw.PriceSale),
		Stock:     stock,
	}
}
