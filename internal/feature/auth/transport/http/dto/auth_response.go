package dto

// UserRes is the public part of a user returned after login or registration.
type UserRes struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthRes is the body of every /login, /google-login and /register response.
type AuthRes struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`
	User    *UserRes `json:"user,omitempty"`
}

// Failure builds an unsuccessful response.
func Failure(message string) AuthRes {
	return AuthRes{Success: false, Message: message}
}
