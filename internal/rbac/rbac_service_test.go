package rbac_test

import (
	"testing"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/domain"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func TestEnforce(t *testing.T) {
	svc, err := rbac.NewService()
	assert.NoError(t, err)

	t.Run("admin can approve leave", func(t *testing.T) {
		ok, err := svc.Enforce(domain.EnforceRequest{Role: rbac.RoleAdmin, Resource: "leave", Action: "approve"})
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("teacher cannot approve leave", func(t *testing.T) {
		ok, err := svc.Enforce(domain.EnforceRequest{Role: rbac.RoleTeacher, Resource: "leave", Action: "approve"})
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("staff can apply", func(t *testing.T) {
		ok, err := svc.Enforce(domain.EnforceRequest{Role: rbac.RoleStaff, Resource: "leave", Action: "create"})
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown role denied", func(t *testing.T) {
		ok, err := svc.Enforce(domain.EnforceRequest{Role: "VISITOR", Resource: "leave", Action: "read"})
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
