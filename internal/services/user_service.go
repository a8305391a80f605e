package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserService manages the users of a tenant
type UserService struct {
	users  *repository.UserRepository
	roles  *repository.RoleRepository
	hasher *auth.PasswordHasher
	access *AccessService
	audit  *AuditService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, hasher *auth.PasswordHasher, access *AccessService, audit *AuditService) *UserService {
	return &UserService{
		users:  repository.NewUserRepository(db),
		roles:  repository.NewRoleRepository(db),
		hasher: hasher,
		access: access,
		audit:  audit,
	}
}

// Create adds an active user to the tenant under one of its roles
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	user, err := s.create(ctx, tenantID, email, req)
	if err != nil {
		s.audit.Record(ctx, tenantID, models.AuditActionUserCreate, "user", email, err)
		return nil, err
	}
	s.audit.Record(ctx, tenantID, models.AuditActionUserCreate, "user", user.ID.String(), nil)
	return s.GetByID(ctx, tenantID, user.ID)
}

func (s *UserService) create(ctx context.Context, tenantID uuid.UUID, email string, req *models.CreateUserRequest) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, req.RoleID); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, tenantID, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("user %q already exists", email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		TenantID:     tenantID,
		RoleID:       req.RoleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "user %q already exists", email)
	}
	return user, nil
}

// List returns a page of the tenant's users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter models.UserFilter, p models.PageParams) (*models.Page[models.User], error) {
	users, total, err := s.users.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(users, total, p), nil
}

// GetByID retrieves a user of the tenant
func (s *UserService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "user %s not found", id)
	}
	return user, nil
}

// Profile returns the caller's own record with the permissions its role holds now
func (s *UserService) Profile(ctx context.Context, tenantID, id uuid.UUID) (*models.UserProfile, error) {
	user, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	codes, err := s.access.RolePermissions(ctx, tenantID, user.RoleID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		TenantID:    user.TenantID,
		RoleID:      user.RoleID,
		Permissions: codes,
	}
	if user.Role != nil {
		profile.Role = user.Role.Name
	}
	return profile, nil
}

// Update changes a user's email, password or active flag
func (s *UserService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	err := s.update(ctx, tenantID, id, req)
	s.audit.Record(ctx, tenantID, models.AuditActionUserUpdate, "user", id.String(), err)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tenantID, id)
}

func (s *UserService) update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateUserRequest) error {
	current, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
		if email != current.Email {
			exists, err := s.users.ExistsByEmail(ctx, tenantID, email, id)
			if err != nil {
				return err
			}
			if exists {
				return conflict("user %q already exists", email)
			}
			updates["email"] = email
		}
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return err
		}
		updates["password_hash"] = hash
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.users.Update(ctx, tenantID, id, updates); err != nil {
		return conflictOr(err, "user email already exists")
	}
	return nil
}

// Deactivate blocks a user from logging in. Credentials already issued stay valid until they expire.
func (s *UserService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := s.GetByID(ctx, tenantID, id)
	if err == nil {
		err = s.users.Update(ctx, tenantID, id, map[string]any{"is_active": false})
	}
	s.audit.Record(ctx, tenantID, models.AuditActionUserDeactivate, "user", id.String(), err)
	if err != nil {
		return err
	}
	log.Info().Str("tenant_id", tenantID.String()).Str("user_id", id.String()).Msg("User deactivated")
	return nil
}

// AssignRole moves a user to another role of the same tenant
func (s *UserService) AssignRole(ctx context.Context, tenantID, id, roleID uuid.UUID) (*models.User, error) {
	_, err := s.GetByID(ctx, tenantID, id)
	if err == nil {
		err = s.requireRole(ctx, tenantID, roleID)
	}
	if err == nil {
		err = s.users.Update(ctx, tenantID, id, map[string]any{"role_id": roleID})
	}
	s.audit.Record(ctx, tenantID, models.AuditActionUserAssignRole, "user", id.String(), err)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tenantID, id)
}

func (s *UserService) requireRole(ctx context.Context, tenantID, roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return invalid("role_id is required")
	}
	if _, err := s.roles.GetByID(ctx, tenantID, roleID); err != nil {
		return notFoundOr(err, "role %s not found", roleID)
	}
	return nil
}
