package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminTokens signs and checks bearer tokens for the admin HTTP API. The
// subject is the admin's telegram id.
type AdminTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAdminTokens(secret string, ttl time.Duration) *AdminTokens {
	return &AdminTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *AdminTokens) Generate(tgID int64) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(tgID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates the signature and time claims and returns the subject
func (a *AdminTokens) Parse(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	tgID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return tgID, nil
}
