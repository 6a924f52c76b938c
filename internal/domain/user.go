package domain

// User is an account that owns DNS records
type User struct {
	ID           string `json:"_id"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// TokenClaims are the identity fields carried in an access token
type TokenClaims struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
