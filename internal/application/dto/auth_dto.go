package dto

// LoginRequest credenciales del administrador.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token de acceso.
type LoginResponse struct {
	Token string `json:"token"`
}
