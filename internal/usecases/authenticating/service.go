package authenticating

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

type Authenticator interface {
	CreateProfile(ctx context.Context, profile *domain.Profile, password string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) error
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	LoginUser(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	// ResolveRole mapeia a identidade autenticada para papel e identificador
	// de recorte; falha com ErrProfileNotFound quando não há perfil
	ResolveRole(ctx context.Context, profileID string) (domain.Role, string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
	GenerateStrongPassword(ctx context.Context, requestProfileID, targetProfileID string) (string, error)
	ChangePassword(ctx context.Context, profileID, currentPassword, newPassword string) error
	ValidatePasswordStrength(password string) error
}

type Service struct {
	profileRepo repository.ProfileRepository
	cfg         *config.Config
}

func NewService(profileRepo repository.ProfileRepository, cfg *config.Config) Authenticator {
	return &Service{
		profileRepo: profileRepo,
		cfg:         cfg,
	}
}

func (s *Service) CreateProfile(ctx context.Context, profile *domain.Profile, password string) (*domain.Profile, error) {
	if profile.Email == "" || profile.Name == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email, nome e senha são obrigatórios")
	}

	if !profile.Role.Valid() {
		return nil, NewAuthError(ErrInvalidRole, apiErrors.ErrInvalidFormat, fmt.Sprintf("papel desconhecido: %s", profile.Role))
	}

	profile.Email = handleEmail(profile.Email)

	existing, err := s.profileRepo.GetProfileByEmail(ctx, profile.Email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar perfil no banco de dados")
	}
	if existing != nil {
		return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "Email já cadastrado")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile.PasswordHash = string(hashedPassword)
	profile.Active = false

	profile, err = s.profileRepo.CreateProfile(ctx, profile)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar perfil")
	}

	return profile, nil
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) error {
	if req.ID == "" {
		return errors.New("ID is required")
	}

	profile, err := s.profileRepo.GetProfileByID(ctx, req.ID)
	if profile == nil || err != nil {
		if err == nil {
			return fmt.Errorf("perfil não encontrado para o ID: %s", req.ID)
		}
		return err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}

	if req.Email != nil {
		profile.Email = handleEmail(*req.Email)
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return NewAuthError(ErrInvalidRole, apiErrors.ErrInvalidFormat, fmt.Sprintf("papel desconhecido: %s", *req.Role))
		}
		profile.Role = *req.Role
	}

	if req.Active != nil {
		profile.Active = *req.Active
	}

	return s.profileRepo.UpdateProfile(ctx, profile)
}

func (s *Service) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	return s.profileRepo.ListProfiles(ctx)
}

func (s *Service) LoginUser(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)

	profile, err := s.profileRepo.GetProfileByEmail(ctx, email)
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar perfil no banco de dados")
	}

	if profile == nil {
		return "", NewAuthError(ErrProfileNotFound, apiErrors.ErrUserNotFound, "Perfil não encontrado")
	}

	if !profile.Active {
		return "", NewProfileAuthError(ErrUserDisabled, apiErrors.ErrUserDisabled, profile.ID, "Conta desativada")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", NewProfileAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, profile.ID, "Senha incorreta")
	}

	token, err := generateJWT(profile, s.cfg.SecretKey)
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return token, nil
}

func (s *Service) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		logrus.Error(err)
		return nil, err
	}

	if profile == nil {
		return nil, ErrProfileNotFound
	}

	profile.PasswordHash = ""
	return profile, nil
}

// ResolveRole busca o perfil da identidade autenticada e devolve o papel e o
// identificador usado para recorte (o próprio ID do perfil). A ausência do
// perfil é um erro explícito exibido ao chamador, nunca um padrão silencioso.
func (s *Service) ResolveRole(ctx context.Context, profileID string) (domain.Role, string, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return "", "", NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar perfil no banco de dados")
	}

	if profile == nil {
		return "", "", NewProfileAuthError(ErrProfileNotFound, apiErrors.ErrUserNotFound, profileID, "Perfil não encontrado")
	}

	return profile.Role, profile.ID, nil
}

func generateJWT(profile *domain.Profile, secretKey string) (string, error) {
	claims := domain.Claims{
		ProfileID:   profile.ID,
		ProfileName: profile.Name,
		Email:       profile.Email,
		Role:        profile.Role,
		Active:      profile.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*domain.Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GenerateStrongPassword gera uma senha forte para o perfil alvo.
// Verifica se o solicitante é administrador antes de prosseguir.
func (s *Service) GenerateStrongPassword(ctx context.Context, requestProfileID, targetProfileID string) (string, error) {
	requester, err := s.profileRepo.GetProfileByID(ctx, requestProfileID)
	if err != nil {
		return "", err
	}
	if requester == nil {
		return "", ErrProfileNotFound
	}
	if requester.Role != domain.RoleAdmin {
		return "", ErrInsufficientPrivilege
	}

	target, err := s.profileRepo.GetProfileByID(ctx, targetProfileID)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", ErrProfileNotFound
	}

	newPassword, err := generateStrongPassword(12)
	if err != nil {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	target.PasswordHash = string(hashedPassword)
	if err := s.profileRepo.UpdateProfile(ctx, target); err != nil {
		return "", err
	}

	return newPassword, nil
}

func (s *Service) ChangePassword(ctx context.Context, profileID, currentPassword, newPassword string) error {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if currentPassword == newPassword {
		return ErrSamePassword
	}

	if err := s.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	profile.PasswordHash = string(hashedPassword)
	return s.profileRepo.UpdateProfile(ctx, profile)
}

// ValidatePasswordStrength exige comprimento mínimo e mistura de maiúsculas,
// minúsculas e números
func (s *Service) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasNumber bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return ErrWeakPassword
	}

	return nil
}

// generateStrongPassword gera uma senha forte com o comprimento especificado
// incluindo letras maiúsculas, minúsculas, números e caracteres especiais
func generateStrongPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	const (
		lowerChars   = "abcdefghijklmnopqrstuvwxyz"
		upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		numberChars  = "0123456789"
		specialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?"
		allChars     = lowerChars + upperChars + numberChars + specialChars
	)

	password := make([]byte, length)

	// Garantir pelo menos um caractere de cada tipo
	for i, charset := range []string{lowerChars, upperChars, numberChars, specialChars} {
		randomChar, err := getRandomChar(charset)
		if err != nil {
			return "", err
		}
		password[i] = randomChar
	}

	for i := 4; i < length; i++ {
		randomChar, err := getRandomChar(allChars)
		if err != nil {
			return "", err
		}
		password[i] = randomChar
	}

	// Embaralhar para não fixar a posição dos caracteres obrigatórios
	for i := len(password) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := jBig.Int64()
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func getRandomChar(charset string) (byte, error) {
	index, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[index.Int64()], nil
}
