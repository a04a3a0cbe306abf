package auth

import (
	"context"
	"testing"
)

func TestRBACService_AdminHasFullAccess(t *testing.T) {
	// Arrange
	rbac := NewRBACService(newTestLogger())
	ctx := context.Background()

	// Act & Assert
	checks := []struct {
		resource string
		action   string
	}{
		{"users", "manage"},
		{"bots", "delete"},
		{"billing", "manage"},
		{"push", "write"},
	}
	for _, c := range checks {
		if !rbac.CheckPermission(ctx, "admin", c.resource, c.action) {
			t.Errorf("expected admin to have %s:%s", c.resource, c.action)
		}
	}
}

func TestRBACService_OperatorIsLimited(t *testing.T) {
	// Arrange
	rbac := NewRBACService(newTestLogger())
	ctx := context.Background()

	// Act & Assert
	if !rbac.CheckPermission(ctx, "operator", "leads", "write") {
		t.Error("expected operator to write leads")
	}
	if !rbac.CheckPermission(ctx, "operator", "billing", "read") {
		t.Error("expected operator to read billing")
	}
	if rbac.CheckPermission(ctx, "operator", "billing", "write") {
		t.Error("expected operator to be denied billing writes")
	}
	if rbac.CheckPermission(ctx, "operator", "bots", "delete") {
		t.Error("expected operator to be denied bot deletes")
	}
	if rbac.CheckPermission(ctx, "operator", "users", "read") {
		t.Error("expected operator to be denied user access")
	}
}

func TestRBACService_UnknownRoleDenied(t *testing.T) {
	rbac := NewRBACService(newTestLogger())

	if rbac.CheckPermission(context.Background(), "intruder", "leads", "read") {
		t.Error("expected unknown role to be denied")
	}
}

func TestRBACService_GetPermissionsCopies(t *testing.T) {
	// Arrange
	rbac := NewRBACService(newTestLogger())

	// Act
	perms := rbac.GetPermissions("operator")
	if len(perms) == 0 {
		t.Fatal("expected operator permissions")
	}
	perms[0] = Permission{Resource: "users", Action: "manage"}

	// Assert
	if rbac.CheckPermission(context.Background(), "operator", "users", "manage") {
		t.Error("mutating the returned slice must not change the role")
	}
	if rbac.GetPermissions("ghost") != nil {
		t.Error("expected nil for unknown role")
	}
}
