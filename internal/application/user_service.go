package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-property-booking/internal/domain/user"
	"github.com/sanosuguru/go-property-booking/internal/pkg/token"
)

type UserService struct {
	userRepo user.Repository
	tokens   *token.Manager
}

func NewUserService(userRepo user.Repository, tokens *token.Manager) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Signup は新しいユーザーを登録する
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*user.User, error) {
	role, err := user.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, user.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("ユーザー確認に失敗: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	u := user.NewUser(input.Name, input.Email, string(hashed), role)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginResult はログイン成功時の結果
type LoginResult struct {
	User        *user.User
	AccessToken string
}

// Login はメールアドレスとパスワードを検証してアクセストークンを発行する
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("トークン発行に失敗: %w", err)
	}
	return &LoginResult{User: u, AccessToken: accessToken}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
