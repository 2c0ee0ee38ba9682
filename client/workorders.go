package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sstcp-ops/maintops-go/types"
)

// WorkOrdersService handles the three work-order categories: periodic
// inspections, temporary repairs and spot work.
type WorkOrdersService struct {
	client *Client
}

func workOrderQuery(options *types.WorkOrderListOptions) url.Values {
	query := url.Values{}
	if options == nil {
		return query
	}
	if options.Page > 0 {
		query.Set("page", strconv.Itoa(options.Page))
	}
	if options.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(options.PageSize))
	}
	if options.Status != "" {
		query.Set("status", options.Status)
	}
	if options.ProjectID > 0 {
		query.Set("project_id", strconv.Itoa(options.ProjectID))
	}
	if options.AssigneeID > 0 {
		query.Set("assignee_id", strconv.Itoa(options.AssigneeID))
	}
	if options.Keyword != "" {
		query.Set("keyword", options.Keyword)
	}
	if options.DateFrom != "" {
		query.Set("date_from", options.DateFrom)
	}
	if options.DateTo != "" {
		query.Set("date_to", options.DateTo)
	}
	return query
}

// ListPeriodicInspections retrieves periodic inspection orders.
func (s *WorkOrdersService) ListPeriodicInspections(ctx context.Context, options *types.WorkOrderListOptions) (*types.WorkOrderList, error) {
	var result types.WorkOrderList
	err := s.client.Get(ctx, queryPath("/periodic-inspections", workOrderQuery(options)), &result)
	return &result, err
}

// GetPeriodicInspection retrieves one periodic inspection order.
func (s *WorkOrdersService) GetPeriodicInspection(ctx context.Context, id int) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Get(ctx, fmt.Sprintf("/periodic-inspections/%d", id), &result)
	return &result, err
}

// SubmitPeriodicInspection submits a completed inspection for approval.
func (s *WorkOrdersService) SubmitPeriodicInspection(ctx context.Context, id int, order *types.WorkOrder) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Put(ctx, fmt.Sprintf("/periodic-inspections/%d/submit", id), order, &result)
	return &result, err
}

// ApprovePeriodicInspection records an approve/reject decision.
func (s *WorkOrdersService) ApprovePeriodicInspection(ctx context.Context, id int, decision *types.ApprovalRequest) error {
	return s.client.Post(ctx, fmt.Sprintf("/periodic-inspections/%d/approve", id), decision, nil)
}

// ListTemporaryRepairs retrieves temporary repair orders.
func (s *WorkOrdersService) ListTemporaryRepairs(ctx context.Context, options *types.WorkOrderListOptions) (*types.WorkOrderList, error) {
	var result types.WorkOrderList
	err := s.client.Get(ctx, queryPath("/temporary-repairs", workOrderQuery(options)), &result)
	return &result, err
}

// GetTemporaryRepair retrieves one temporary repair order.
func (s *WorkOrdersService) GetTemporaryRepair(ctx context.Context, id int) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Get(ctx, fmt.Sprintf("/temporary-repairs/%d", id), &result)
	return &result, err
}

// CreateTemporaryRepair opens a new temporary repair order.
func (s *WorkOrdersService) CreateTemporaryRepair(ctx context.Context, order *types.WorkOrder) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Post(ctx, "/temporary-repairs", order, &result)
	return &result, err
}

// ApproveTemporaryRepair records an approve/reject decision.
func (s *WorkOrdersService) ApproveTemporaryRepair(ctx context.Context, id int, decision *types.ApprovalRequest) error {
	return s.client.Post(ctx, fmt.Sprintf("/temporary-repairs/%d/approve", id), decision, nil)
}

// ListSpotWorks retrieves spot-work orders.
func (s *WorkOrdersService) ListSpotWorks(ctx context.Context, options *types.WorkOrderListOptions) (*types.WorkOrderList, error) {
	var result types.WorkOrderList
	err := s.client.Get(ctx, queryPath("/spot-works", workOrderQuery(options)), &result)
	return &result, err
}

// CreateSpotWork opens a new spot-work order.
func (s *WorkOrdersService) CreateSpotWork(ctx context.Context, order *types.WorkOrder) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Post(ctx, "/spot-works", order, &result)
	return &result, err
}

// QuickFillSpotWork files a pre-filled spot-work order in one step.
func (s *WorkOrdersService) QuickFillSpotWork(ctx context.Context, order *types.WorkOrder) (*types.WorkOrder, error) {
	var result types.WorkOrder
	err := s.client.Post(ctx, "/spot-works/quick-fill", order, &result)
	return &result, err
}

// ApproveSpotWork records an approve/reject decision.
func (s *WorkOrdersService) ApproveSpotWork(ctx context.Context, id int, decision *types.ApprovalRequest) error {
	return s.client.Post(ctx, fmt.Sprintf("/spot-works/%d/approve", id), decision, nil)
}

// ListWorkPlans retrieves the combined work-plan view across categories.
func (s *WorkOrdersService) ListWorkPlans(ctx context.Context, options *types.WorkOrderListOptions) (*types.WorkOrderList, error) {
	var result types.WorkOrderList
	err := s.client.Get(ctx, queryPath("/work-plans", workOrderQuery(options)), &result)
	return &result, err
}
