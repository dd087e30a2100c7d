// Package token issues and verifies the platform's bearer tokens. Tokens
// are HS256 JWTs carrying the user id, role, and a jti used for logout
// revocation.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

// Claims are the token claims for platform access tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "eventhub",
		ttl:        ttl,
	}
}

// TTL is the lifetime stamped into issued tokens. The revocation list
// uses it to expire entries.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for the user, returning the token and its jti.
func (s *Service) Issue(userID domain.UserID, role domain.Role) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Verifier couples signature validation with the revocation list. It
// satisfies the auth middleware's TokenVerifier.
type Verifier struct {
	tokens  *Service
	revoked RevocationList
}

func NewVerifier(tokens *Service, revoked RevocationList) *Verifier {
	return &Verifier{tokens: tokens, revoked: revoked}
}

// Verify resolves a bearer token into an actor and the token's jti.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (domain.Actor, string, error) {
	claims, err := v.tokens.parse(tokenString)
	if err != nil {
		return domain.Actor{}, "", err
	}

	if v.revoked != nil {
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Actor{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "revocation check failed")
		}
		if revoked {
			return domain.Actor{}, "", dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		}
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return domain.Actor{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}

	return domain.Actor{UserID: userID, Role: role}, claims.ID, nil
}
