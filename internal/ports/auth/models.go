package auth

// Claims representa la identidad ya autenticada que entrega la capa de auth
// upstream. El core consume (UserID, Role); la emisión/verificación del
// token no es responsabilidad de este servicio.
type Claims struct {
	UserID string
	Role   string
	Email  string
}
