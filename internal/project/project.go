// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package project implements the project workspace domain.

Projects are the template's example tenant-scoped resource: they live in the
tenant's partition, carry a slug for readable URLs, and demonstrate the
resource-membership model where per-project roles govern who may manage whom.
*/
package project

import (
	"time"

	"github.com/tesserahq/tessera/internal/rbac"
)

// Project is a collaborative workspace within a tenant.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member links a user to a project with a resource role.
type Member struct {
	ProjectID string            `json:"project_id"`
	UserID    string            `json:"user_id"`
	Role      rbac.ResourceRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
}
