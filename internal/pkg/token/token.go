package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("トークンが無効です")
	ErrExpiredToken = errors.New("トークンの有効期限が切れています")
)

// Claims はアクセストークンに含まれる認証情報
type Claims struct {
	UserID string
	Role   string
}

// Manager はJWTの発行と検証を行う
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager は新しいManagerを作成する
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue はユーザーIDとロールからアクセストークンを発行する
func (m *Manager) Issue(userID, role string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	})
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("トークン署名に失敗: %w", err)
	}
	return signed, nil
}

// Parse はアクセストークンを検証してClaimsを取り出す
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("予期しない署名アルゴリズム: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: sub, Role: role}, nil
}
