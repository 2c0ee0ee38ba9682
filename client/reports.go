package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sstcp-ops/maintops-go/types"
)

// MaintenanceLogsService handles technicians' daily maintenance logs.
type MaintenanceLogsService struct {
	client *Client
}

// List retrieves maintenance logs. userID 0 means the caller's own logs;
// viewing other users' logs is gated by view_all_maintenance_log.
func (s *MaintenanceLogsService) List(ctx context.Context, userID int, dateFrom, dateTo string) ([]types.MaintenanceLog, error) {
	query := url.Values{}
	if userID > 0 {
		query.Set("user_id", strconv.Itoa(userID))
	}
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}
	var result []types.MaintenanceLog
	err := s.client.Get(ctx, queryPath("/maintenance-logs", query), &result)
	return result, err
}

// Get retrieves one log entry.
func (s *MaintenanceLogsService) Get(ctx context.Context, id int) (*types.MaintenanceLog, error) {
	var result types.MaintenanceLog
	err := s.client.Get(ctx, fmt.Sprintf("/maintenance-logs/%d", id), &result)
	return &result, err
}

// Fill submits a new log entry.
func (s *MaintenanceLogsService) Fill(ctx context.Context, entry *types.MaintenanceLog) (*types.MaintenanceLog, error) {
	var result types.MaintenanceLog
	err := s.client.Post(ctx, "/maintenance-logs", entry, &result)
	return &result, err
}

// WeeklyReportsService handles department weekly reports.
type WeeklyReportsService struct {
	client *Client
}

// List retrieves weekly reports, optionally filtered by department.
func (s *WeeklyReportsService) List(ctx context.Context, department string) ([]types.WeeklyReport, error) {
	path := "/weekly-reports"
	if department != "" {
		query := url.Values{}
		query.Set("department", department)
		path = queryPath(path, query)
	}
	var result []types.WeeklyReport
	err := s.client.Get(ctx, path, &result)
	return result, err
}

// Fill submits a weekly report.
func (s *WeeklyReportsService) Fill(ctx context.Context, report *types.WeeklyReport) (*types.WeeklyReport, error) {
	var result types.WeeklyReport
	err := s.client.Post(ctx, "/weekly-reports", report, &result)
	return &result, err
}

// Approve records an approve/reject decision on a weekly report.
func (s *WeeklyReportsService) Approve(ctx context.Context, id int, decision *types.ApprovalRequest) error {
	return s.client.Post(ctx, fmt.Sprintf("/weekly-reports/%d/approve", id), decision, nil)
}
