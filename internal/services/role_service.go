package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RoleService manages tenant roles and their permission sets
type RoleService struct {
	db          *gorm.DB
	roles       *repository.RoleRepository
	permissions *repository.PermissionRepository
	access      *AccessService
	audit       *AuditService
}

// NewRoleService creates a new role service
func NewRoleService(db *gorm.DB, access *AccessService, audit *AuditService) *RoleService {
	return &RoleService{
		db:          db,
		roles:       repository.NewRoleRepository(db),
		permissions: repository.NewPermissionRepository(db),
		access:      access,
		audit:       audit,
	}
}

// Create creates a role in the tenant, optionally with an initial permission set
func (s *RoleService) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateRoleRequest) (*models.Role, error) {
	name, err := requireText("name", req.Name, 100)
	if err != nil {
		return nil, err
	}

	var role *models.Role
	err = repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		exists, err := roles.ExistsByName(ctx, tenantID, name, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return conflict("role %q already exists", name)
		}

		ids, err := s.resolveIDs(ctx, tx, req.PermissionIDs)
		if err != nil {
			return err
		}

		role = &models.Role{Name: name, TenantID: tenantID}
		if err := roles.Create(ctx, role); err != nil {
			return err
		}
		return roles.AddPermissions(ctx, role.ID, ids)
	})
	if err != nil {
		err = conflictOr(err, "role %q already exists", name)
		s.audit.Record(ctx, tenantID, models.AuditActionRoleCreate, "role", name, err)
		return nil, err
	}

	s.audit.Record(ctx, tenantID, models.AuditActionRoleCreate, "role", role.ID.String(), nil)
	return s.Get(ctx, tenantID, role.ID)
}

// List returns a page of the tenant's roles
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID, filter models.RoleFilter, p models.PageParams) (*models.Page[models.Role], error) {
	roles, total, err := s.roles.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(roles, total, p), nil
}

// Get retrieves a role of the tenant with its permissions
func (s *RoleService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	role, err := s.roles.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "role %s not found", id)
	}
	return role, nil
}

// Update renames a role and, when PermissionIDs is set, replaces its permission set
func (s *RoleService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateRoleRequest) (*models.Role, error) {
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		role, err := roles.LockByID(ctx, tenantID, id)
		if err != nil {
			return notFoundOr(err, "role %s not found", id)
		}

		if req.Name != nil {
			name, err := requireText("name", *req.Name, 100)
			if err != nil {
				return err
			}
			if role.Name == models.AdminRoleName && name != role.Name {
				return conflict("the %s role cannot be renamed", models.AdminRoleName)
			}
			exists, err := roles.ExistsByName(ctx, tenantID, name, id)
			if err != nil {
				return err
			}
			if exists {
				return conflict("role %q already exists", name)
			}
			if err := roles.Rename(ctx, id, name); err != nil {
				return err
			}
		}

		if req.PermissionIDs != nil {
			ids, err := s.resolveIDs(ctx, tx, *req.PermissionIDs)
			if err != nil {
				return err
			}
			if err := roles.ReplacePermissions(ctx, id, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = conflictOr(err, "role name already exists")
		s.audit.Record(ctx, tenantID, models.AuditActionRoleUpdate, "role", id.String(), err)
		return nil, err
	}

	s.access.InvalidateRole(ctx, tenantID, id)
	s.audit.Record(ctx, tenantID, models.AuditActionRoleUpdate, "role", id.String(), nil)
	return s.Get(ctx, tenantID, id)
}

// AssignPermissions replaces the role's permissions with exactly permissionIDs.
// Every id must exist; the role row is locked so concurrent replacements serialize.
func (s *RoleService) AssignPermissions(ctx context.Context, tenantID, roleID uuid.UUID, permissionIDs []uuid.UUID) (*models.Role, error) {
	return s.assign(ctx, tenantID, roleID, func(tx *gorm.DB) ([]uuid.UUID, error) {
		return s.resolveIDs(ctx, tx, permissionIDs)
	})
}

// AssignPermissionCodes is AssignPermissions keyed by permission code
func (s *RoleService) AssignPermissionCodes(ctx context.Context, tenantID, roleID uuid.UUID, codes []string) (*models.Role, error) {
	return s.assign(ctx, tenantID, roleID, func(tx *gorm.DB) ([]uuid.UUID, error) {
		codes = dedupeStrings(codes)
		found, err := s.permissions.WithTx(tx).FindByCodes(ctx, codes)
		if err != nil {
			return nil, err
		}
		if len(found) != len(codes) {
			return nil, notFound("permissions not found: %s", strings.Join(missingCodes(codes, found), ", "))
		}
		ids := make([]uuid.UUID, 0, len(found))
		for _, p := range found {
			ids = append(ids, p.ID)
		}
		return ids, nil
	})
}

func (s *RoleService) assign(ctx context.Context, tenantID, roleID uuid.UUID, resolve func(tx *gorm.DB) ([]uuid.UUID, error)) (*models.Role, error) {
	var count int
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		if _, err := roles.LockByID(ctx, tenantID, roleID); err != nil {
			return notFoundOr(err, "role %s not found", roleID)
		}

		ids, err := resolve(tx)
		if err != nil {
			return err
		}
		count = len(ids)
		return roles.ReplacePermissions(ctx, roleID, ids)
	})
	if err != nil {
		s.audit.Record(ctx, tenantID, models.AuditActionAssignPermissions, "role", roleID.String(), err)
		return nil, err
	}

	s.access.InvalidateRole(ctx, tenantID, roleID)
	s.audit.Record(ctx, tenantID, models.AuditActionAssignPermissions, "role", roleID.String(), nil)
	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("role_id", roleID.String()).
		Int("permissions", count).
		Msg("Role permissions replaced")

	return s.Get(ctx, tenantID, roleID)
}

// Delete removes a role that no user holds. The Admin role cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		role, err := roles.LockByID(ctx, tenantID, id)
		if err != nil {
			return notFoundOr(err, "role %s not found", id)
		}
		if role.Name == models.AdminRoleName {
			return conflict("the %s role cannot be deleted", models.AdminRoleName)
		}

		users, err := roles.CountUsers(ctx, id)
		if err != nil {
			return err
		}
		if users > 0 {
			return conflict("role %q is assigned to %d users", role.Name, users)
		}
		return roles.Delete(ctx, id)
	})
	s.audit.Record(ctx, tenantID, models.AuditActionRoleDelete, "role", id.String(), err)
	if err != nil {
		return err
	}

	s.access.InvalidateRole(ctx, tenantID, id)
	return nil
}

// resolveIDs dedupes ids and checks that every one names an existing permission
func (s *RoleService) resolveIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	ids = dedupeIDs(ids)
	found, err := s.permissions.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, notFound("%d of %d permissions not found", len(ids)-len(found), len(ids))
	}
	return ids, nil
}

func missingCodes(codes []string, found []models.Permission) []string {
	have := make(map[string]struct{}, len(found))
	for _, p := range found {
		have[p.Code] = struct{}{}
	}
	var missing []string
	for _, c := range codes {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
