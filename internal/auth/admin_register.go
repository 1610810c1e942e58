package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/security"
)

const temporaryPasswordLength = 14

// AdminUserService lets admins provision accounts of either role.
type AdminUserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error)
	ListUsers(ctx context.Context, role *enums.UserRole) ([]users.UserDTO, error)
}

// AdminUserServiceParams names the dependencies for the admin create flow.
type AdminUserServiceParams struct {
	DB              txRunner
	PasswordConfig  config.PasswordConfig
	UserRepoFactory func(tx *gorm.DB) userWriter
}

type adminUserService struct {
	tx          txRunner
	passwordCfg config.PasswordConfig
	repoFactory func(tx *gorm.DB) userWriter
}

// NewAdminUserService builds the admin account provisioning service.
func NewAdminUserService(params AdminUserServiceParams) (AdminUserService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) userWriter { return users.NewRepository(tx) }
	}
	return &adminUserService{
		tx:          params.DB,
		passwordCfg: params.PasswordConfig,
		repoFactory: factory,
	}, nil
}

func (s *adminUserService) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	password := req.Password
	generated := ""
	if strings.TrimSpace(password) == "" {
		temp, err := security.GenerateTempPassword(temporaryPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = temp
		generated = temp
	}

	user, err := createAccount(ctx, s.tx, s.repoFactory, s.passwordCfg, req.Username, password, req.Role)
	if err != nil {
		return nil, err
	}
	return &CreateUserResponse{
		User:              users.FromModel(user),
		TemporaryPassword: generated,
	}, nil
}

func (s *adminUserService) ListUsers(ctx context.Context, role *enums.UserRole) ([]users.UserDTO, error) {
	var rows []users.UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := users.NewRepository(tx).List(ctx, role)
		if err != nil {
			return err
		}
		rows = make([]users.UserDTO, 0, len(found))
		for i := range found {
			rows = append(rows, *users.FromModel(&found[i]))
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, nil
}
