package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 会话 Cookie/确认链接里携带的签名载荷。
// SID 指向 Redis 里的服务端会话记录，删掉记录即可让旧 Cookie 失效。
type Claims struct {
	UID     string `json:"uid"`
	SID     string `json:"sid,omitempty"`
	Purpose string `json:"purpose,omitempty"` // "session" / "confirm"
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
}

func (j *JWTer) Issue(uid, sid, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:     uid,
		SID:     sid,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
