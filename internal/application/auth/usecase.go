package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/jwt"
)

const minPasswordLen = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de empresa, registro y login.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	companies   *usecase.CompanyUseCase
	jwtCfg      JWTConfig
	clock       clock.Clock
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	companies *usecase.CompanyUseCase,
	jwtCfg JWTConfig,
	clk clock.Clock,
) *AuthUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, companies: companies, jwtCfg: jwtCfg, clock: clk}
}

// Signup crea la empresa y su primer usuario admin, y devuelve el token de ese usuario.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.SignupResponse, error) {
	// validar el usuario antes de crear la empresa para no dejarla huérfana
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companies.Create(ctx, in.Company)
	if err != nil {
		return nil, err
	}
	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:     in.Email,
		Password:  in.Password,
		CompanyID: company.ID,
		Name:      in.Name,
		Role:      entity.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	token, err := uc.issue(user.ID, user.CompanyID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.SignupResponse{Company: *company, Token: token, User: *user}, nil
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// El email es único global (el login no pide empresa); devuelve ErrEmailAlreadyExists si ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}
	role := in.Role
	if role == "" {
		role = entity.RoleSolicitante
	}
	if !entity.ValidRole(role) {
		return nil, domain.Invalid("role", "perfil inválido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := usecase.ToUserResponse(user)
	return &out, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y password incorrecto responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	token, err := uc.issue(user.ID, user.CompanyID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  usecase.ToUserResponse(user),
	}, nil
}

func (uc *AuthUseCase) issue(userID, companyID, role string) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, userID, companyID, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return domain.Invalid("email", "email inválido")
	}
	if len(password) < minPasswordLen {
		return domain.Invalid("password", "mínimo de 8 caracteres")
	}
	return nil
}
