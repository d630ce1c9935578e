package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound           = errors.New("ユーザーが見つかりません")
	ErrEmailAlreadyRegistered = errors.New("メールアドレスは既に登録されています")
	ErrInvalidCredentials     = errors.New("メールアドレスまたはパスワードが正しくありません")
	ErrInvalidRole            = errors.New("ロールは guest または host である必要があります")
	ErrNameRequired           = errors.New("名前は必須です")
	ErrEmailRequired          = errors.New("メールアドレスは必須です")
	ErrPasswordRequired       = errors.New("パスワードは必須です")
)
