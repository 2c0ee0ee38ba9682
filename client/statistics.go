package client

import (
	"context"
	"net/url"

	"github.com/sstcp-ops/maintops-go/types"
)

// StatisticsService handles backend-aggregated statistics. All aggregation
// happens server-side; the client only fetches results.
type StatisticsService struct {
	client *Client
}

// WorkOrders retrieves work-order statistics for a date range. Empty bounds
// mean the backend default range.
func (s *StatisticsService) WorkOrders(ctx context.Context, dateFrom, dateTo string) (*types.WorkOrderStatistics, error) {
	query := url.Values{}
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}
	var result types.WorkOrderStatistics
	err := s.client.Get(ctx, queryPath("/statistics/work-orders", query), &result)
	return &result, err
}

// Overview retrieves the dashboard overview payload.
func (s *StatisticsService) Overview(ctx context.Context) (*types.WorkOrderStatistics, error) {
	var result types.WorkOrderStatistics
	err := s.client.Get(ctx, "/statistics/overview", &result)
	return &result, err
}
