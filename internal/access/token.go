package access

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
)

const tokenIssuer = "placement-portal"

type claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs principals into bearer tokens and resolves them back.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(p Principal) (Session, error) {
	if p.IsAnonymous() {
		return Session{}, failures.New(failures.KindUnauthorized, "cannot issue a token for an anonymous caller")
	}

	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.AccountID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return Session{}, errors.Wrap(err, "sign token")
	}
	return Session{Principal: p, Token: signed, ExpiresAt: expiresAt}, nil
}

// Resolve returns Anonymous for an empty token and Unauthorized for anything it
// cannot verify.
func (t *TokenIssuer) Resolve(token string) (Principal, error) {
	if token == "" {
		return Anonymous(), nil
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return Anonymous(), failures.Wrap(failures.KindUnauthorized, "invalid token", err)
	}

	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return Anonymous(), failures.New(failures.KindUnauthorized, "invalid token subject")
	}
	role, err := ParseRole(string(c.Role))
	if err != nil || role == RoleAnonymous {
		return Anonymous(), failures.New(failures.KindUnauthorized, "invalid token role")
	}

	return Principal{AccountID: uint(id), Role: role}, nil
}
