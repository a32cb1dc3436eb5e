package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkspaceRole is the role a user holds within a workspace.
type WorkspaceRole string

// Workspace roles.
const (
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
	WorkspaceRoleMember WorkspaceRole = "member"
)

// Valid reports whether r is a known workspace role.
func (r WorkspaceRole) Valid() bool {
	return r == WorkspaceRoleAdmin || r == WorkspaceRoleMember
}

// Workspace is the top-level tenant that owns projects and members.
type Workspace struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Icon      *string   `json:"icon"       db:"icon"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	WorkspaceID uuid.UUID     `json:"workspace_id" db:"workspace_id"`
	UserID      uuid.UUID     `json:"user_id"      db:"user_id"`
	Role        WorkspaceRole `json:"role"         db:"role"`
	CreatedAt   time.Time     `json:"created_at"   db:"created_at"`
}
