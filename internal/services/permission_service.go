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

// PermissionService manages the global permission catalog
type PermissionService struct {
	db          *gorm.DB
	permissions *repository.PermissionRepository
	roles       *repository.RoleRepository
	access      *AccessService
}

// NewPermissionService creates a new permission service
func NewPermissionService(db *gorm.DB, access *AccessService) *PermissionService {
	return &PermissionService{
		db:          db,
		permissions: repository.NewPermissionRepository(db),
		roles:       repository.NewRoleRepository(db),
		access:      access,
	}
}

// EnsureCatalog inserts the default permissions that are missing. It is idempotent.
func (s *PermissionService) EnsureCatalog(ctx context.Context) error {
	if err := s.permissions.CreateMissing(ctx, models.DefaultPermissionCatalog); err != nil {
		return err
	}
	log.Info().Int("permissions", len(models.DefaultPermissionCatalog)).Msg("Permission catalog ensured")
	return nil
}

// Create adds one permission to the catalog and grants it to every Admin role
func (s *PermissionService) Create(ctx context.Context, req *models.CreatePermissionRequest) (*models.Permission, error) {
	code := strings.TrimSpace(req.Code)
	if err := validatePermissionCode(code); err != nil {
		return nil, err
	}

	permission := &models.Permission{Code: code, Description: strings.TrimSpace(req.Description)}
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		permissions := s.permissions.WithTx(tx)

		existing, err := permissions.ExistingCodes(ctx, []string{code})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return conflict("permission %q already exists", code)
		}

		if err := permissions.Create(ctx, permission); err != nil {
			return err
		}
		return permissions.AttachToRolesNamed(ctx, models.AdminRoleName, []uuid.UUID{permission.ID})
	})
	if err != nil {
		return nil, conflictOr(err, "permission %q already exists", code)
	}

	s.access.InvalidateAll(ctx)
	return permission, nil
}

// CreateByModule creates the create, read, update and delete permissions of a module and
// grants them to every Admin role. Either all four are created or none is.
func (s *PermissionService) CreateByModule(ctx context.Context, module string) ([]models.Permission, error) {
	module = strings.ToLower(strings.TrimSpace(module))
	if !modulePattern.MatchString(module) {
		return nil, invalid("module %q must contain only lowercase letters and hyphens", module)
	}

	codes := make([]string, 0, len(models.ModuleActions))
	for _, action := range models.ModuleActions {
		codes = append(codes, module+":"+action)
	}

	created := make([]*models.Permission, 0, len(codes))
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		permissions := s.permissions.WithTx(tx)

		admins, err := s.roles.WithTx(tx).CountByName(ctx, models.AdminRoleName)
		if err != nil {
			return err
		}
		if admins == 0 {
			return notFound("no %s role exists", models.AdminRoleName)
		}

		existing, err := permissions.ExistingCodes(ctx, codes)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return conflict("permissions already exist: %s", strings.Join(existing, ", "))
		}

		ids := make([]uuid.UUID, 0, len(codes))
		for i, code := range codes {
			p := &models.Permission{
				Code:        code,
				Description: strings.ToUpper(models.ModuleActions[i][:1]) + models.ModuleActions[i][1:] + " " + module,
			}
			created = append(created, p)
		}
		if err := permissions.Create(ctx, created...); err != nil {
			return err
		}
		for _, p := range created {
			ids = append(ids, p.ID)
		}
		return permissions.AttachToRolesNamed(ctx, models.AdminRoleName, ids)
	})
	if err != nil {
		return nil, conflictOr(err, "permissions for module %q already exist", module)
	}

	s.access.InvalidateAll(ctx)
	log.Info().Str("module", module).Strs("codes", codes).Msg("Module permissions created")

	out := make([]models.Permission, 0, len(created))
	for _, p := range created {
		out = append(out, *p)
	}
	return out, nil
}

// List returns a page of the catalog
func (s *PermissionService) List(ctx context.Context, p models.PageParams) (*models.Page[models.Permission], error) {
	permissions, total, err := s.permissions.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(permissions, total, p), nil
}

// Get retrieves a permission
func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "permission %s not found", id)
	}
	return permission, nil
}

// Update changes a permission's code or description
func (s *PermissionService) Update(ctx context.Context, id uuid.UUID, req *models.UpdatePermissionRequest) (*models.Permission, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Code != nil && strings.TrimSpace(*req.Code) != current.Code {
		code := strings.TrimSpace(*req.Code)
		if err := validatePermissionCode(code); err != nil {
			return nil, err
		}
		existing, err := s.permissions.ExistingCodes(ctx, []string{code})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, conflict("permission %q already exists", code)
		}
		updates["code"] = code
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := s.permissions.Update(ctx, id, updates); err != nil {
		return nil, conflictOr(err, "permission code already exists")
	}
	s.access.InvalidateAll(ctx)
	return s.Get(ctx, id)
}

// Delete removes a permission from the catalog and from every role holding it
func (s *PermissionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		permissions := s.permissions.WithTx(tx)
		if _, err := permissions.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "permission %s not found", id)
		}
		return permissions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.access.InvalidateAll(ctx)
	return nil
}
