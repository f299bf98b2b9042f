package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sahilchouksey/partner-hub/model"
)

// ListPartnerships fetches the records for one college filter.
// GET /partnership?college=<name>
func (c *Client) ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error) {
	query := url.Values{}
	if college != "" {
		query.Set("college", college)
	}

	var list model.PartnershipList
	if err := c.doRequest(ctx, http.MethodGet, "/partnership", query, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list partnerships: %w", err)
	}
	if list.Partnerships == nil {
		return []model.Partnership{}, nil
	}
	return list.Partnerships, nil
}

// GetPartnershipRaw fetches one record as its raw JSON object.
// Accepts both a bare record and a {"partnership": {...}} envelope.
// GET /partnership/:id
func (c *Client) GetPartnershipRaw(ctx context.Context, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/partnership/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get partnership %s: %w", id, err)
	}
	return unwrap(raw, "partnership"), nil
}

// GetPartnership fetches and decodes one record.
func (c *Client) GetPartnership(ctx context.Context, id string) (model.Partnership, error) {
	raw, err := c.GetPartnershipRaw(ctx, id)
	if err != nil {
		return model.Partnership{}, err
	}
	var p model.Partnership
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Partnership{}, fmt.Errorf("failed to decode partnership %s: %w", id, err)
	}
	return p, nil
}

// UpdatePartnership sends a partial update and returns the fresh snapshot.
// PUT /partnership/:id
func (c *Client) UpdatePartnership(ctx context.Context, id string, changes map[string]interface{}) (model.Partnership, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, "/partnership/"+url.PathEscape(id), nil, changes, &raw); err != nil {
		return model.Partnership{}, fmt.Errorf("failed to update partnership %s: %w", id, err)
	}

	var p model.Partnership
	if err := json.Unmarshal(unwrap(raw, "partnership"), &p); err != nil {
		return model.Partnership{}, fmt.Errorf("failed to decode updated partnership %s: %w", id, err)
	}
	return p, nil
}

// unwrap returns raw[key] when raw is an object whose only relevant member is key.
func unwrap(raw json.RawMessage, key string) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if inner, ok := envelope[key]; ok && len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return raw
}
