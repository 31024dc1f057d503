package rbac

import (
	"github.com/shubhamprakashrai/school-connect-sub001/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Role-based policy for the leave engine. Policies are static per role; user
// and policy administration lives outside this service.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

const (
	RoleAdmin   = "ADMIN"
	RoleStaff   = "STAFF"
	RoleTeacher = "TEACHER"
)

var defaultPolicies = [][]string{
	{RoleAdmin, "leave", "read"},
	{RoleAdmin, "leave", "create"},
	{RoleAdmin, "leave", "approve"},
	{RoleAdmin, "leave", "cancel"},
	{RoleAdmin, "leave_balance", "read"},
	{RoleAdmin, "leave_balance", "manage"},
	{RoleAdmin, "leave_type", "read"},
	{RoleAdmin, "leave_type", "manage"},

	{RoleTeacher, "leave", "read"},
	{RoleTeacher, "leave", "create"},
	{RoleTeacher, "leave", "cancel"},
	{RoleTeacher, "leave_balance", "read"},
	{RoleTeacher, "leave_type", "read"},

	{RoleStaff, "leave", "read"},
	{RoleStaff, "leave", "create"},
	{RoleStaff, "leave", "cancel"},
	{RoleStaff, "leave_balance", "read"},
	{RoleStaff, "leave_type", "read"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
