package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID string
	Username   string
	Admin      bool
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to operator consoles and
// the CLI. The core never sees the raw token; middleware resolves it down to
// the operator code.
type AccessTokenClaims struct {
	OperatorID string `json:"operator_id"`
	Username   string `json:"username"`
	Admin      bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}
