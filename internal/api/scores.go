package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// Ranking fetches the top limit carbon scores, best first.
func (c *Client) Ranking(ctx context.Context, limit int) ([]catalog.CarbonScore, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []catalog.CarbonScore
	if err := c.getJSON(ctx, "/carbon-scores/ranking", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Score fetches the carbon score of one model.
func (c *Client) Score(ctx context.Context, modelID string) (*catalog.CarbonScore, error) {
	var s catalog.CarbonScore
	if err := c.getJSON(ctx, "/carbon-scores/"+url.PathEscape(modelID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Categories fetches the backend's category table.
func (c *Client) Categories(ctx context.Context) (*catalog.Table, error) {
	var bands map[string]catalog.CategoryBand
	if err := c.getJSON(ctx, "/carbon-scores/categories", nil, &bands); err != nil {
		return nil, err
	}
	return catalog.TableFromBands(bands), nil
}

// EfficiencyMetrics fetches aggregate score statistics.
func (c *Client) EfficiencyMetrics(ctx context.Context) (*catalog.EfficiencyMetrics, error) {
	var m catalog.EfficiencyMetrics
	if err := c.getJSON(ctx, "/carbon-scores/efficiency-metrics", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Recommendations fetches greener alternatives for a model.
func (c *Client) Recommendations(ctx context.Context, modelID string, limit int) ([]catalog.Recommendation, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []catalog.Recommendation
	if err := c.getJSON(ctx, "/carbon-scores/recommendations/"+url.PathEscape(modelID), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Regions fetches the simulator regions with their emission factors.
func (c *Client) Regions(ctx context.Context) ([]catalog.Region, error) {
	var out []catalog.Region
	if err := c.getJSON(ctx, "/simulations/regions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
