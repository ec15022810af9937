package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"go-unihr/internal/domain"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	ReloadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)

	// Role management
	ListRoles() ([]domain.RoleResponse, error)
	GetRole(id string) (*domain.RoleResponse, error)
	CreateRole(req domain.CreateRoleRequest) (*domain.RoleResponse, error)
	UpdateRole(id string, req domain.UpdateRoleRequest) (*domain.RoleResponse, error)
	DeleteRole(id string) error
	ListPermissions() ([]domain.PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) ReloadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reloadPolicyUnlocked()
}

func (s *service) reloadPolicyUnlocked() error {
	s.enforcer.ClearPolicy()

	employeeRoles, err := s.repo.GetEmployeeRoles()
	if err != nil {
		return err
	}

	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions()
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("rbac policy loaded",
		zap.Int("employee_roles", len(employeeRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reloadPolicyUnlocked(); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("employee_id", req.EmployeeID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}

func (s *service) ListRoles() ([]domain.RoleResponse, error) {
	roles, err := s.repo.ListRoles()
	if err != nil {
		return nil, err
	}

	out := make([]domain.RoleResponse, 0, len(roles))
	for _, role := range roles {
		resp, err := s.mapRole(&role)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *service) GetRole(id string) (*domain.RoleResponse, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}
	return s.mapRole(role)
}

func (s *service) CreateRole(req domain.CreateRoleRequest) (*domain.RoleResponse, error) {
	role := &RoleRow{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(role); err != nil {
		return nil, err
	}

	if len(req.Permissions) > 0 {
		if err := s.repo.UpdateRolePermissions(role.ID, req.Permissions); err != nil {
			return nil, err
		}
	}

	if err := s.ReloadPolicy(); err != nil {
		return nil, err
	}

	return s.mapRole(role)
}

func (s *service) UpdateRole(id string, req domain.UpdateRoleRequest) (*domain.RoleResponse, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if err := s.repo.UpdateRole(role); err != nil {
		return nil, err
	}

	if req.Permissions != nil {
		if err := s.repo.UpdateRolePermissions(role.ID, req.Permissions); err != nil {
			return nil, err
		}
	}

	if err := s.ReloadPolicy(); err != nil {
		return nil, err
	}

	return s.mapRole(role)
}

func (s *service) DeleteRole(id string) error {
	if err := s.repo.DeleteRole(id); err != nil {
		return err
	}
	return s.ReloadPolicy()
}

func (s *service) ListPermissions() ([]domain.PermissionResponse, error) {
	perms, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	out := make([]domain.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, domain.PermissionResponse{
			ID:       p.ID,
			Resource: p.Resource,
			Action:   p.Action,
			Label:    p.Label,
			Category: p.Category,
		})
	}
	return out, nil
}

func (s *service) mapRole(role *RoleRow) (*domain.RoleResponse, error) {
	perms, err := s.repo.GetPermissionsByRoleID(role.ID)
	if err != nil {
		return nil, err
	}

	permIDs := make([]string, 0, len(perms))
	for _, p := range perms {
		permIDs = append(permIDs, p.ID)
	}

	return &domain.RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: permIDs,
	}, nil
}
