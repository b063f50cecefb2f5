package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/pkg/config"
	"github.com/jhoicas/Tienda-api/pkg/jwt"
)

// RoleAdmin único rol con permisos de escritura sobre el catálogo.
const RoleAdmin = "admin"

// AuthUseCase login del administrador. La tienda tiene una sola cuenta
// administrativa, configurada por entorno como email + hash bcrypt.
type AuthUseCase struct {
	cfg config.AuthConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(cfg config.AuthConfig) *AuthUseCase {
	return &AuthUseCase{cfg: cfg}
}

// Login verifica email/password contra las credenciales configuradas y
// genera el JWT. Email y password incorrectos devuelven el mismo error.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if uc.cfg.AdminEmail == "" || uc.cfg.AdminPasswordHash == "" {
		return nil, domain.ErrForbidden // login deshabilitado
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(uc.cfg.AdminEmail))) != 1 {
		// mismo costo que la rama del password para no filtrar cuál falló
		_ = bcrypt.CompareHashAndPassword([]byte(uc.cfg.AdminPasswordHash), []byte(in.Password))
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.cfg.AdminPasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.cfg.JWTSecret, email, RoleAdmin, uc.cfg.JWTIssuer, uc.cfg.JWTExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token}, nil
}
