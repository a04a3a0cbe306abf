package auth

import (
	"context"

	"go.uber.org/zap"
)

// Permission represents a single resource-action pair.
type Permission struct {
	Resource string
	Action   string
}

// RBACService provides role-based access control by mapping roles
// to their allowed permissions (resource + action combinations).
type RBACService struct {
	permissions map[string][]Permission
	log         *zap.Logger
}

// NewRBACService creates a new RBACService with predefined role permissions.
//
// Roles:
//   - "admin"    : full access, including user accounts and billing writes
//   - "operator" : day-to-day panel work on bots and leads, billing reads
//
// Resources: users, bots, leads, billing, push
// Actions:   read, write, delete, manage
func NewRBACService(log *zap.Logger) *RBACService {
	permissions := map[string][]Permission{
		"admin": {
			{Resource: "users", Action: "read"},
			{Resource: "users", Action: "write"},
			{Resource: "users", Action: "delete"},
			{Resource: "users", Action: "manage"},
			{Resource: "bots", Action: "read"},
			{Resource: "bots", Action: "write"},
			{Resource: "bots", Action: "delete"},
			{Resource: "bots", Action: "manage"},
			{Resource: "leads", Action: "read"},
			{Resource: "leads", Action: "write"},
			{Resource: "leads", Action: "delete"},
			{Resource: "leads", Action: "manage"},
			{Resource: "billing", Action: "read"},
			{Resource: "billing", Action: "write"},
			{Resource: "billing", Action: "manage"},
			{Resource: "push", Action: "write"},
		},
		"operator": {
			// Bots: read and tune, no delete
			{Resource: "bots", Action: "read"},
			{Resource: "bots", Action: "write"},
			// Leads: full CRUD within the account's bot scope
			{Resource: "leads", Action: "read"},
			{Resource: "leads", Action: "write"},
			{Resource: "leads", Action: "delete"},
			// Billing: read only
			{Resource: "billing", Action: "read"},
		},
	}

	log.Info("RBAC service initialized",
		zap.Int("roles", len(permissions)),
	)

	return &RBACService{
		permissions: permissions,
		log:         log,
	}
}

// CheckPermission verifies whether the given role has permission to perform
// the specified action on the specified resource.
func (s *RBACService) CheckPermission(ctx context.Context, role, resource, action string) bool {
	perms, exists := s.permissions[role]
	if !exists {
		s.log.Warn("unknown role attempted access",
			zap.String("role", role),
			zap.String("resource", resource),
			zap.String("action", action),
		)
		return false
	}

	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true
		}
	}

	s.log.Warn("permission denied",
		zap.String("role", role),
		zap.String("resource", resource),
		zap.String("action", action),
	)
	return false
}

// GetPermissions returns all permissions assigned to the given role.
// Returns nil if the role does not exist.
func (s *RBACService) GetPermissions(role string) []Permission {
	perms, exists := s.permissions[role]
	if !exists {
		return nil
	}

	// Return a copy to prevent external mutation
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
