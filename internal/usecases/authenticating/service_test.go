package authenticating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T) (Authenticator, *mocks.MockProfileRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockProfileRepo := mocks.NewMockProfileRepository(ctrl)
	service := NewService(mockProfileRepo, &config.Config{SecretKey: "chave-de-teste"})
	return service, mockProfileRepo
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginUser_TokenCarregaAsClaims(t *testing.T) {
	service, mockProfileRepo := testService(t)

	mockProfileRepo.EXPECT().
		GetProfileByEmail(gomock.Any(), "ana@empresa.com").
		Return(&domain.Profile{
			ID:           "profile-1",
			Name:         "Ana",
			Email:        "ana@empresa.com",
			Role:         domain.RoleSeller,
			Active:       true,
			PasswordHash: hashOf(t, "Senha123"),
		}, nil)

	// E-mail normalizado antes da consulta
	token, err := service.LoginUser(context.Background(), "  Ana@Empresa.com ", "Senha123")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)
	assert.Equal(t, "Ana", claims.ProfileName)
	assert.Equal(t, domain.RoleSeller, claims.Role)
}

func TestLoginUser_Falhas(t *testing.T) {
	tests := []struct {
		name        string
		profile     *domain.Profile
		password    string
		expectedErr error
	}{
		{
			name:        "perfil inexistente",
			profile:     nil,
			password:    "Senha123",
			expectedErr: ErrProfileNotFound,
		},
		{
			name: "conta desativada",
			profile: &domain.Profile{
				ID:     "profile-1",
				Active: false,
			},
			password:    "Senha123",
			expectedErr: ErrUserDisabled,
		},
		{
			name: "senha incorreta",
			profile: &domain.Profile{
				ID:     "profile-1",
				Active: true,
			},
			password:    "SenhaErrada1",
			expectedErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockProfileRepo := testService(t)

			if tt.profile != nil && tt.profile.Active {
				tt.profile.PasswordHash = hashOf(t, "Senha123")
			}

			mockProfileRepo.EXPECT().
				GetProfileByEmail(gomock.Any(), "ana@empresa.com").
				Return(tt.profile, nil)

			_, err := service.LoginUser(context.Background(), "ana@empresa.com", tt.password)
			assert.True(t, errors.Is(err, tt.expectedErr), "esperava %v, veio %v", tt.expectedErr, err)
		})
	}
}

func TestValidateToken_RejeitaTokenAdulterado(t *testing.T) {
	service, _ := testService(t)

	_, err := service.ValidateToken("cabecalho.corpo.assinatura")
	assert.Error(t, err)
}

func TestResolveRole(t *testing.T) {
	service, mockProfileRepo := testService(t)

	mockProfileRepo.EXPECT().
		GetProfileByID(gomock.Any(), "profile-1").
		Return(&domain.Profile{ID: "profile-1", Role: domain.RoleFactory}, nil)

	role, scopeID, err := service.ResolveRole(context.Background(), "profile-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFactory, role)
	assert.Equal(t, "profile-1", scopeID)
}

func TestResolveRole_PerfilInexistente(t *testing.T) {
	service, mockProfileRepo := testService(t)

	mockProfileRepo.EXPECT().
		GetProfileByID(gomock.Any(), "profile-x").
		Return(nil, nil)

	_, _, err := service.ResolveRole(context.Background(), "profile-x")
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{name: "senha forte", password: "Senha123", ok: true},
		{name: "curta demais", password: "Ab1", ok: false},
		{name: "sem maiúscula", password: "senha123", ok: false},
		{name: "sem minúscula", password: "SENHA123", ok: false},
		{name: "sem número", password: "SenhaForte", ok: false},
	}

	service, _ := testService(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrWeakPassword))
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		newPassword string
		expectedErr error
	}{
		{name: "troca válida", current: "Senha123", newPassword: "NovaSenha456"},
		{name: "senha atual incorreta", current: "SenhaErrada1", newPassword: "NovaSenha456", expectedErr: ErrInvalidCredentials},
		{name: "nova senha igual à atual", current: "Senha123", newPassword: "Senha123", expectedErr: ErrSamePassword},
		{name: "nova senha fraca", current: "Senha123", newPassword: "fraca", expectedErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockProfileRepo := testService(t)

			mockProfileRepo.EXPECT().
				GetProfileByID(gomock.Any(), "profile-1").
				Return(&domain.Profile{
					ID:           "profile-1",
					Active:       true,
					PasswordHash: hashOf(t, "Senha123"),
				}, nil)

			if tt.expectedErr == nil {
				mockProfileRepo.EXPECT().
					UpdateProfile(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, profile *domain.Profile) error {
						assert.NoError(t, bcrypt.CompareHashAndPassword(
							[]byte(profile.PasswordHash), []byte(tt.newPassword)))
						return nil
					})
			}

			err := service.ChangePassword(context.Background(), "profile-1", tt.current, tt.newPassword)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.expectedErr), "esperava %v, veio %v", tt.expectedErr, err)
			}
		})
	}
}

func TestGenerateStrongPassword_SomenteAdmin(t *testing.T) {
	service, mockProfileRepo := testService(t)

	mockProfileRepo.EXPECT().
		GetProfileByID(gomock.Any(), "seller-1").
		Return(&domain.Profile{ID: "seller-1", Role: domain.RoleSeller}, nil)

	_, err := service.GenerateStrongPassword(context.Background(), "seller-1", "profile-2")
	assert.True(t, errors.Is(err, ErrInsufficientPrivilege))
}

func TestGenerateStrongPassword_SenhaGeradaPassaNaValidacao(t *testing.T) {
	service, mockProfileRepo := testService(t)

	mockProfileRepo.EXPECT().
		GetProfileByID(gomock.Any(), "admin-1").
		Return(&domain.Profile{ID: "admin-1", Role: domain.RoleAdmin}, nil)

	mockProfileRepo.EXPECT().
		GetProfileByID(gomock.Any(), "profile-2").
		Return(&domain.Profile{ID: "profile-2", Role: domain.RoleSeller}, nil)

	mockProfileRepo.EXPECT().
		UpdateProfile(gomock.Any(), gomock.Any()).
		Return(nil)

	password, err := service.GenerateStrongPassword(context.Background(), "admin-1", "profile-2")
	require.NoError(t, err)
	assert.Len(t, password, 12)
	assert.NoError(t, service.ValidatePasswordStrength(password))
}
