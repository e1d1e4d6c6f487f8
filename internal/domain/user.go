package domain

// User is a registered account. The password fields are never encoded into
// API responses.
type User struct {
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	Infix        string `json:"infix"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
	PasswordSalt string `json:"-"`
}

// AuthClaim is the identity carried inside a signed token: the user record at
// login time, minus secrets.
type AuthClaim struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Infix     string `json:"infix"`
	LastName  string `json:"last_name"`
}

// Claim snapshots the user for token issuance.
func (u User) Claim() AuthClaim {
	return AuthClaim{
		Username:  u.Username,
		FirstName: u.FirstName,
		Infix:     u.Infix,
		LastName:  u.LastName,
	}
}
