package client

import (
	"context"
	"fmt"

	"github.com/sstcp-ops/maintops-go/types"
)

// ProjectsService handles maintained project/site records.
type ProjectsService struct {
	client *Client
}

// List retrieves all projects visible to the caller.
func (s *ProjectsService) List(ctx context.Context) ([]types.Project, error) {
	var result []types.Project
	err := s.client.Get(ctx, "/projects", &result)
	return result, err
}

// Get retrieves one project.
func (s *ProjectsService) Get(ctx context.Context, id int) (*types.Project, error) {
	var result types.Project
	err := s.client.Get(ctx, fmt.Sprintf("/projects/%d", id), &result)
	return &result, err
}

// Create adds a project.
func (s *ProjectsService) Create(ctx context.Context, project *types.Project) (*types.Project, error) {
	var result types.Project
	err := s.client.Post(ctx, "/projects", project, &result)
	return &result, err
}

// Update modifies a project.
func (s *ProjectsService) Update(ctx context.Context, id int, project *types.Project) (*types.Project, error) {
	var result types.Project
	err := s.client.Put(ctx, fmt.Sprintf("/projects/%d", id), project, &result)
	return &result, err
}
