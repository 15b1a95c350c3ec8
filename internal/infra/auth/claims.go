package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Access token claims =====

// userIDClaims are tried in order; backends disagree on the name.
var userIDClaims = []string{"user_id", "sub", "id"}

// Claims is what the client reads out of a backend access token.
type Claims struct {
	UserID    model.ID
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token is past its exp claim at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the token payload without verifying the signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrNoUserInToken, err)
	}

	var out Claims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	for _, name := range userIDClaims {
		if id := claimID(claims[name]); id != "" {
			out.UserID = id
			return out, nil
		}
	}
	return out, domain.ErrNoUserInToken
}

// UserID is Inspect narrowed to the user id.
func UserID(token string) (model.ID, error) {
	c, err := Inspect(token)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

func claimID(v any) model.ID {
	switch t := v.(type) {
	case string:
		return model.ID(strings.TrimSpace(t))
	case float64:
		return model.ID(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return ""
}
