package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GraphMLService checks GraphML documents against the server's decoder.
type GraphMLService struct {
	c *Client
}

// Validate uploads doc. A rejected document yields an *APIError for which
// IsFormatError is true.
func (s *GraphMLService) Validate(ctx context.Context, doc []byte) (*ValidateResponse, error) {
	body, _, err := s.c.send(ctx, http.MethodPost, "/api/v1/graphml/validate", "application/graphml+xml", bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}

	var out ValidateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
