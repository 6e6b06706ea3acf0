package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject 系统中只有一个主体，所有签发的令牌都属于它
const Subject = "admin"

// ErrInvalidToken 覆盖解析失败、签名不匹配和过期等所有情况，不向调用方暴露具体原因
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithClock 替换当前时间的来源，测试过期逻辑时使用
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(secret string, expiration time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiration <= 0 {
		return nil, errors.New("jwt expiration must be positive")
	}

	s := &Service{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) Issue() (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	})

	return token.SignedString(s.secret)
}

// Validate 返回的错误可以用 errors.Is 与 ErrInvalidToken 比较，原始错误被包裹在内用于日志
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	return claims, nil
}
