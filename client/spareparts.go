package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sstcp-ops/maintops-go/types"
)

// SparePartsService handles spare-part and repair-tool inventory operations.
type SparePartsService struct {
	client *Client
}

func stockQuery(page, pageSize int, keyword string) url.Values {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	if keyword != "" {
		query.Set("keyword", keyword)
	}
	return query
}

// ListStock retrieves the spare-parts stock.
func (s *SparePartsService) ListStock(ctx context.Context, page, pageSize int, keyword string) ([]types.SparePart, error) {
	var result []types.SparePart
	err := s.client.Get(ctx, queryPath("/spare-parts", stockQuery(page, pageSize, keyword)), &result)
	return result, err
}

// GetStock retrieves one spare part.
func (s *SparePartsService) GetStock(ctx context.Context, id int) (*types.SparePart, error) {
	var result types.SparePart
	err := s.client.Get(ctx, fmt.Sprintf("/spare-parts/%d", id), &result)
	return &result, err
}

// Issue records taking spare parts out of stock.
func (s *SparePartsService) Issue(ctx context.Context, usage *types.SparePartsUsage) (*types.SparePartsUsage, error) {
	var result types.SparePartsUsage
	err := s.client.Post(ctx, "/spare-parts/issue", usage, &result)
	return &result, err
}

// Return records returning previously issued spare parts.
func (s *SparePartsService) Return(ctx context.Context, usage *types.SparePartsUsage) (*types.SparePartsUsage, error) {
	var result types.SparePartsUsage
	err := s.client.Post(ctx, "/spare-parts/return", usage, &result)
	return &result, err
}

// ListUsages retrieves the issue/return history.
func (s *SparePartsService) ListUsages(ctx context.Context, page, pageSize int) ([]types.SparePartsUsage, error) {
	var result []types.SparePartsUsage
	err := s.client.Get(ctx, queryPath("/spare-parts/usages", stockQuery(page, pageSize, "")), &result)
	return result, err
}

// ListTools retrieves the repair-tool stock.
func (s *SparePartsService) ListTools(ctx context.Context, page, pageSize int, keyword string) ([]types.SparePart, error) {
	var result []types.SparePart
	err := s.client.Get(ctx, queryPath("/repair-tools", stockQuery(page, pageSize, keyword)), &result)
	return result, err
}

// InboundTool records a repair tool entering stock.
func (s *SparePartsService) InboundTool(ctx context.Context, tool *types.SparePart) (*types.SparePart, error) {
	var result types.SparePart
	err := s.client.Post(ctx, "/repair-tools/inbound", tool, &result)
	return &result, err
}

// IssueTool records taking a repair tool out of stock.
func (s *SparePartsService) IssueTool(ctx context.Context, usage *types.SparePartsUsage) (*types.SparePartsUsage, error) {
	var result types.SparePartsUsage
	err := s.client.Post(ctx, "/repair-tools/issue", usage, &result)
	return &result, err
}

// ReturnTool records returning a repair tool.
func (s *SparePartsService) ReturnTool(ctx context.Context, usage *types.SparePartsUsage) (*types.SparePartsUsage, error) {
	var result types.SparePartsUsage
	err := s.client.Post(ctx, "/repair-tools/return", usage, &result)
	return &result, err
}
