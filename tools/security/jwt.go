package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"PolyChat/tools/errs"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Options controls signing and lifetime.
type Options struct {
	Secret []byte
	Alg    string        // HS256/HS384/HS512 (default HS512)
	TTL    time.Duration // default 31 days
}

type Claims struct {
	Username string `json:"username"`
	jwtlib.RegisteredClaims
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS512", TTL: 31 * 24 * time.Hour}
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Generate issues a session token carrying the username claim.
func Generate(opts Options, username string) (token string, expireAt time.Time, err error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", time.Time{}, err
	}
	if opts.TTL <= 0 {
		opts.TTL = 31 * 24 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := Claims{
		Username: username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}
	signed, err := jwtlib.NewWithClaims(method, claims).SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, errs.Wrap(err)
	}
	return signed, exp, nil
}

// Verify parses and validates token, restricted to the configured HMAC algorithm.
func Verify(opts Options, token string) (*Claims, error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errs.New("unexpected alg", "alg", t.Header["alg"])
		}
		return opts.Secret, nil
	}, jwtlib.WithValidMethods([]string{method.Alg()}))
	if err != nil {
		return nil, errs.ErrInvalidSession.WrapMsg(err.Error())
	}
	if !parsed.Valid || claims.Username == "" {
		return nil, errs.ErrInvalidSession.WrapMsg("claims rejected")
	}
	return claims, nil
}

// JWTVerifier resolves session tokens to the username they were issued for.
type JWTVerifier struct {
	opts Options
}

func NewJWTVerifier(opts Options) *JWTVerifier {
	return &JWTVerifier{opts: opts}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (string, time.Time, error) {
	claims, err := Verify(v.opts, token)
	if err != nil {
		return "", time.Time{}, err
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Username, exp, nil
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "", "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, errs.New("unsupported alg, use HS256/HS384/HS512", "alg", alg)
	}
}
