package rbac

import (
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"

	"go-unihr/internal/domain"
)

type mockRepo struct {
	employeeRoles []EmployeeRoleRow
	rolePerms     []RolePermissionRow
}

func (m *mockRepo) GetEmployeeRoles() ([]EmployeeRoleRow, error) {
	return m.employeeRoles, nil
}

func (m *mockRepo) GetRolePermissions() ([]RolePermissionRow, error) {
	return m.rolePerms, nil
}

func (m *mockRepo) ListRoles() ([]RoleRow, error)                  { return nil, nil }
func (m *mockRepo) GetRoleByID(string) (*RoleRow, error)           { return nil, nil }
func (m *mockRepo) GetRoleByName(string) (*RoleRow, error)         { return nil, nil }
func (m *mockRepo) CreateRole(*RoleRow) error                      { return nil }
func (m *mockRepo) UpdateRole(*RoleRow) error                      { return nil }
func (m *mockRepo) DeleteRole(string) error                        { return nil }
func (m *mockRepo) ListPermissions() ([]PermissionRow, error)      { return nil, nil }
func (m *mockRepo) GetPermissionsByRoleID(string) ([]PermissionRow, error) {
	return nil, nil
}
func (m *mockRepo) UpdateRolePermissions(string, []string) error { return nil }

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)

	return e
}

func TestRBACService_Enforce(t *testing.T) {
	repo := &mockRepo{
		employeeRoles: []EmployeeRoleRow{
			{EmployeeID: "emp-1", RoleID: "role-clerk"},
			{EmployeeID: "emp-2", RoleID: "role-approver"},
		},
		rolePerms: []RolePermissionRow{
			{RoleID: "role-clerk", Resource: "payroll", Action: "create"},
			{RoleID: "role-clerk", Resource: "payroll", Action: "update"},
			{RoleID: "role-approver", Resource: "payroll", Action: "approve"},
		},
	}
	enforcer := newTestEnforcer(t)

	service := NewService(repo, enforcer)

	err := service.ReloadPolicy()
	assert.NoError(t, err)

	allowed, err := service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		Resource:   "payroll",
		Action:     "create",
	})
	assert.NoError(t, err)
	assert.True(t, allowed)

	// A clerk cannot approve.
	denied, err := service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		Resource:   "payroll",
		Action:     "approve",
	})
	assert.NoError(t, err)
	assert.False(t, denied)

	allowed, err = service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-2",
		Resource:   "payroll",
		Action:     "approve",
	})
	assert.NoError(t, err)
	assert.True(t, allowed)

	// Unknown employee has no roles at all.
	denied, err = service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-999",
		Resource:   "payroll",
		Action:     "create",
	})
	assert.NoError(t, err)
	assert.False(t, denied)
}
