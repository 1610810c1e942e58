package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/security"
)

// RegisterService handles self-service signup.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userWriter interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB               txRunner
	SessionManager   sessionManager
	JWTConfig        config.JWTConfig
	PasswordConfig   config.PasswordConfig
	AllowAdminSignup bool
	// UserRepoFactory rebinds the user repository to a transaction.
	UserRepoFactory func(tx *gorm.DB) userWriter
}

type registerService struct {
	tx               txRunner
	session          sessionManager
	jwtCfg           config.JWTConfig
	passwordCfg      config.PasswordConfig
	allowAdminSignup bool
	repoFactory      func(tx *gorm.DB) userWriter
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) userWriter { return users.NewRepository(tx) }
	}
	return &registerService{
		tx:               params.DB,
		session:          params.SessionManager,
		jwtCfg:           params.JWTConfig,
		passwordCfg:      params.PasswordConfig,
		allowAdminSignup: params.AllowAdminSignup,
		repoFactory:      factory,
	}, nil
}

// Register creates a cashier account (or admin when signup of admins is
// enabled) and logs it in.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	role := enums.UserRoleCashier
	if req.Role != nil && *req.Role == enums.UserRoleAdmin && s.allowAdminSignup {
		role = enums.UserRoleAdmin
	}

	user, err := createAccount(ctx, s.tx, s.repoFactory, s.passwordCfg, req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := issueTokens(ctx, s.session, s.jwtCfg, time.Now().UTC(), user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func createAccount(
	ctx context.Context,
	runner txRunner,
	factory func(tx *gorm.DB) userWriter,
	passwordCfg config.PasswordConfig,
	username, password string,
	role enums.UserRole,
) (*models.User, error) {
	normalized := users.NormalizeUsername(username)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := security.ValidatePassword(password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	passwordHash, err := security.HashPassword(password, passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = runner.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := factory(tx)

		if _, err := userRepo.FindByUsername(ctx, normalized); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     normalized,
			PasswordHash: passwordHash,
			Role:         role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
