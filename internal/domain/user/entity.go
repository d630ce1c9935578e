package user

import "time"

// Role はユーザーの役割を表す閉じた型
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// ParseRole は文字列からRoleへ変換する
// guest/host 以外は受け付けない
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest:
		return RoleGuest, nil
	case RoleHost:
		return RoleHost, nil
	default:
		return "", ErrInvalidRole
	}
}

// User はユーザーエンティティを表す
type User struct {
	ID             string
	Name           string
	Email          string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
}

// NewUser は新しいユーザーを作成する
func NewUser(name, email, hashedPassword string, role Role) *User {
	return &User{
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      time.Now(),
	}
}

// IsGuest はゲストかを返す
func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

// IsHost はホストかを返す
func (u *User) IsHost() bool {
	return u.Role == RoleHost
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	if u.HashedPassword == "" {
		return ErrPasswordRequired
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}
