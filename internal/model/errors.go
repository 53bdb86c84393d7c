package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, account, medication, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に不備があります: %s", reason),
		Category: "validation",
		Action:   "必須項目を入力して再度お試しください。",
	}
}

// NewDuplicateAccountError はメールアドレス重複エラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "account",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// アカウント列挙を防ぐため、メールアドレス不明とパスワード不一致で
// 同一のエラーを返すこと。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// トークン欠落・改ざん・期限切れのいずれでも同一のレスポンスを返すこと。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "アカウントが見つかりません。",
		Category: "account",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewRecordNotFoundError は服薬記録未検出エラーを生成する。
// 他アカウントの記録IDを指定した場合も同一のエラーを返し、
// IDの存在有無を漏らさないこと。
func NewRecordNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  "指定された服薬記録が見つかりません。",
		Category: "medication",
		Action:   "記録IDを確認してください。",
	}
}
