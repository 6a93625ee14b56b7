package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/untangle-ph/untangle-backend/internal/apperrors"
	"github.com/untangle-ph/untangle-backend/internal/config"
)

// NormalizeMobile normalizes a raw mobile number to the 10-digit format used as
// the member lookup key. It strips non-digits, drops the "63" country code and
// a leading trunk "0", then keeps the last 10 digits.
//
//	"+639171234567" -> "9171234567"
//	"09171234567"   -> "9171234567"
//	"9171234567"    -> "9171234567"
func NormalizeMobile(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// Country code first, trunk prefix second. Order matters for "+63917..."
	// style inputs.
	digits = strings.TrimPrefix(digits, "63")
	digits = strings.TrimPrefix(digits, "0")

	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}

	if len(digits) != 10 {
		return "", apperrors.InvalidArgument("invalid mobile number %q: must be 10 digits after normalization", raw)
	}

	return digits, nil
}

// RoundHours rounds an hour value to 2 decimal places, half away from zero.
// Every hour figure persisted by the ledger goes through this.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateAfter reports whether a is a strictly later calendar date than b.
func DateAfter(a, b time.Time) bool {
	return DateOf(a).After(DateOf(b))
}

// GenerateJWT generates a signed JWT for a staff account.
func GenerateJWT(staffID string, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":  staffID,
		"role": role,
		"exp":  time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateJWT parses and validates a JWT, returning its claims.
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
