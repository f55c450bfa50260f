package api

import (
	"context"
	"net/url"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// ModelPage is the paginated response of GET /models/.
type ModelPage struct {
	Items      []catalog.Model `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// MaxPageSize is the largest page the backend serves.
const MaxPageSize = 100

// ListModels fetches one server-filtered page. q is usually query.State.Encode().
func (c *Client) ListModels(ctx context.Context, q url.Values) (*ModelPage, error) {
	var page ModelPage
	if err := c.getJSON(ctx, "/models/", q, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []catalog.Model{}
	}
	return &page, nil
}

// Model fetches a single model by id.
func (c *Client) Model(ctx context.Context, id string) (*catalog.Model, error) {
	var m catalog.Model
	if err := c.getJSON(ctx, "/models/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Architectures lists every architecture in the catalog, unfiltered.
func (c *Client) Architectures(ctx context.Context) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, "/models/architectures", nil, &out)
	return out, err
}

// ModelTypes lists every model type in the catalog, unfiltered.
func (c *Client) ModelTypes(ctx context.Context) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, "/models/model-types", nil, &out)
	return out, err
}

// CloudProviders lists every cloud provider in the catalog, unfiltered.
func (c *Client) CloudProviders(ctx context.Context) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, "/models/cloud-providers", nil, &out)
	return out, err
}

// Statistics fetches the global catalog figures.
func (c *Client) Statistics(ctx context.Context) (*catalog.Statistics, error) {
	var s catalog.Statistics
	if err := c.getJSON(ctx, "/models/statistics", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
