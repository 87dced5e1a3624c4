package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// Secret is the HMAC signing secret. Required.
	Secret []byte

	// Issuer is the expected token issuer (iss claim). Optional.
	Issuer string

	// Audience is the expected token audience (aud claim). Optional.
	Audience string

	// RolesClaim is the claim containing caller roles.
	// Default: "roles"
	RolesClaim string
}

// JWTAuthenticator validates HMAC-signed bearer tokens from the
// Authorization header.
type JWTAuthenticator struct {
	config JWTConfig
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config JWTConfig) *JWTAuthenticator {
	if config.RolesClaim == "" {
		config.RolesClaim = "roles"
	}
	return &JWTAuthenticator{config: config}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return "jwt"
}

// Supports returns true if the request carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.HasPrefix(req.GetHeader("Authorization"), "Bearer ")
}

// Authenticate validates the bearer token.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader("Authorization")
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" || tokenString == strings.TrimSpace(header) {
		return AuthFailure(ErrMissingCredentials, "jwt"), nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if a.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.config.Issuer))
	}
	if a.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.config.Audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return a.config.Secret, nil
	}, opts...)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return AuthFailure(ErrTokenExpired, "jwt"), nil
		}
		return AuthFailure(ErrTokenMalformed, "jwt"), nil
	}
	if !token.Valid {
		return AuthFailure(ErrInvalidCredentials, "jwt"), nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthFailure(ErrTokenMalformed, "jwt"), nil
	}

	return AuthSuccess(a.buildIdentity(claims)), nil
}

func (a *JWTAuthenticator) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: AuthMethodJWT,
		Claims: make(map[string]any, len(claims)),
	}
	for k, v := range claims {
		identity.Claims[k] = v
	}

	if sub, ok := claims["sub"].(string); ok {
		identity.Principal = sub
	}
	if roles, ok := claims[a.config.RolesClaim].([]any); ok {
		identity.Roles = make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, s)
			}
		}
	}
	if exp, ok := claims["exp"].(float64); ok {
		identity.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return identity
}

var _ Authenticator = (*JWTAuthenticator)(nil)
