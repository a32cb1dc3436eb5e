package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	workspaceID := uuid.New()

	t.Run("created with default workflow", func(t *testing.T) {
		t.Parallel()

		project, err := domain.NewProject(workspaceID, userID, "Garden", nil, now)
		require.NoError(t, err)
		result := &service.ProjectResult{Project: project, Workflow: domain.NewDefaultWorkflow(project.ID, now)}

		svc := &mocks.TestifyMockProjectService{}
		svc.On("CreateProject", mock.Anything, userID, service.CreateProjectInput{
			WorkspaceID: workspaceID,
			Name:        "Garden",
		}).Return(result, nil)

		router := newProjectRouter(api.NewProjectHandler(svc, discardLogger()), userID)
		rec := serve(t, router, http.MethodPost, "/api/projects",
			`{"workspace_id":"`+workspaceID.String()+`","name":"Garden"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp api.ProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, project.ID.String(), resp.ID)
		assert.Equal(t, workspaceID.String(), resp.WorkspaceID)
		assert.Equal(t, userID.String(), resp.CreatedBy)
		require.Len(t, resp.Statuses, len(domain.DefaultStatuses))
		assert.Equal(t, "To do", resp.Statuses[0].Name)
		assert.False(t, resp.Statuses[0].IsDone)
		last := resp.Statuses[len(resp.Statuses)-1]
		assert.Equal(t, "Done", last.Name)
		assert.True(t, last.IsDone)
		require.Len(t, resp.Sections, len(domain.DefaultSections))
		assert.Equal(t, "Backlog", resp.Sections[0].Name)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		userID         uuid.UUID
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unauthenticated",
			body:           `{"workspace_id":"` + workspaceID.String() + `","name":"Garden"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "User ID not found or invalid",
		},
		{
			name:           "missing workspace",
			userID:         userID,
			body:           `{"name":"Garden"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid workspace_id: required field",
		},
		{
			name:           "short name",
			userID:         userID,
			body:           `{"workspace_id":"` + workspaceID.String() + `","name":"G"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid name: too short",
		},
		{
			name:           "not a member",
			userID:         userID,
			body:           `{"workspace_id":"` + workspaceID.String() + `","name":"Garden"}`,
			serviceErr:     service.NewServiceError("create_project", "workspace access denied", service.ErrNotMember),
			expectedStatus: http.StatusForbidden,
			expectedError:  "You are not a member of this workspace",
		},
		{
			name:           "name blank after trimming",
			userID:         userID,
			body:           `{"workspace_id":"` + workspaceID.String() + `","name":"   "}`,
			serviceErr:     service.NewServiceError("create_project", "invalid project", domain.ErrProjectNameTooShort),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Project name is too short",
		},
		{
			name:           "store failure",
			userID:         userID,
			body:           `{"workspace_id":"` + workspaceID.String() + `","name":"Garden"}`,
			serviceErr:     errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to create project",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.TestifyMockProjectService{}
			if tt.serviceErr != nil {
				svc.On("CreateProject", mock.Anything, tt.userID, mock.Anything).Return(nil, tt.serviceErr)
			}

			router := newProjectRouter(api.NewProjectHandler(svc, discardLogger()), tt.userID)
			rec := serve(t, router, http.MethodPost, "/api/projects", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp["error"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything, mock.Anything)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestNewProjectHandler_NilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { api.NewProjectHandler(nil, discardLogger()) })
	assert.Panics(t, func() { api.NewProjectHandler(&mocks.TestifyMockProjectService{}, nil) })
}
