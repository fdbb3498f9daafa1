package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	s := memory.New()
	companies := usecase.NewCompanyUseCase(s.Companies(), s.Sectors(), s.AuditLogs(), nil)
	return auth.NewAuthUseCase(s.Users(), s.Companies(), companies,
		auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "almoxarifado-api"}, nil)
}

func signup(t *testing.T, uc *auth.AuthUseCase) *dto.SignupResponse {
	t.Helper()
	res, err := uc.Signup(context.Background(), dto.SignupRequest{
		Company:  dto.CreateCompanyRequest{Name: "Prefeitura", CNPJ: "12345678000190"},
		Name:     "Maria",
		Email:    "maria@itu.sp.gov.br",
		Password: "segredo123",
	})
	require.NoError(t, err)
	return res
}

func TestSignup_CreaEmpresaYAdmin(t *testing.T) {
	uc := newAuth()
	res := signup(t, uc)

	assert.Equal(t, entity.RoleAdmin, res.User.Role)
	assert.Equal(t, res.Company.ID, res.User.CompanyID)

	claims, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, res.Company.ID, claims.CompanyID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestSignup_EmailRepetidoNoCreaEmpresa(t *testing.T) {
	uc := newAuth()
	signup(t, uc)

	_, err := uc.Signup(context.Background(), dto.SignupRequest{
		Company:  dto.CreateCompanyRequest{Name: "Outra", CNPJ: "99345678000190"},
		Email:    "MARIA@itu.sp.gov.br",
		Password: "segredo123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_PerfilPorDefectoYValidaciones(t *testing.T) {
	uc := newAuth()
	res := signup(t, uc)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "joao@itu.sp.gov.br", Password: "12345678", CompanyID: res.Company.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSolicitante, u.Role)
	assert.Equal(t, "joao@itu.sp.gov.br", u.Name)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@y.com", Password: "curta", CompanyID: res.Company.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@y.com", Password: "12345678", CompanyID: res.Company.ID, Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@y.com", Password: "12345678", CompanyID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin(t *testing.T) {
	uc := newAuth()
	signup(t, uc)
	ctx := context.Background()

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "maria@itu.sp.gov.br", Password: "segredo123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Maria", out.User.Name)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "maria@itu.sp.gov.br", Password: "errada123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ninguem@itu.sp.gov.br", Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
