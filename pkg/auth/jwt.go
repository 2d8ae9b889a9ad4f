package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// offlineTokenExpired reports whether a stored offline token carries an
// exp claim in the past. The claim is inspected without signature
// verification; the game client is the final authority on the token.
// Tokens that do not parse as JWTs, or carry no exp claim, are treated as
// non-expired so a provider format change cannot strand cached tokens.
func offlineTokenExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Unix(int64(exp), 0).Before(time.Now())
}
