package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sstcp-ops/maintops-go/types"
)

// PersonnelService handles staff records.
type PersonnelService struct {
	client *Client
}

// List retrieves personnel, optionally filtered by department.
func (s *PersonnelService) List(ctx context.Context, department string) ([]types.Personnel, error) {
	path := "/personnel"
	if department != "" {
		query := url.Values{}
		query.Set("department", department)
		path = queryPath(path, query)
	}
	var result []types.Personnel
	err := s.client.Get(ctx, path, &result)
	return result, err
}

// Get retrieves one staff record.
func (s *PersonnelService) Get(ctx context.Context, id int) (*types.Personnel, error) {
	var result types.Personnel
	err := s.client.Get(ctx, fmt.Sprintf("/personnel/%d", id), &result)
	return &result, err
}

// Create adds a staff record.
func (s *PersonnelService) Create(ctx context.Context, person *types.Personnel) (*types.Personnel, error) {
	var result types.Personnel
	err := s.client.Post(ctx, "/personnel", person, &result)
	return &result, err
}

// Update modifies a staff record.
func (s *PersonnelService) Update(ctx context.Context, id int, person *types.Personnel) (*types.Personnel, error) {
	var result types.Personnel
	err := s.client.Put(ctx, fmt.Sprintf("/personnel/%d", id), person, &result)
	return &result, err
}

// Delete removes a staff record. The backend enforces the admin-only rule;
// the UI additionally gates it through policy.CanDeletePersonnel.
func (s *PersonnelService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/personnel/%d", id), nil)
}
