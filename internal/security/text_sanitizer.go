// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は服薬記録の自由入力フィールド（薬剤名・用量・メモ）を
// サニタイズし、保存データ経由のXSS攻撃からユーザーを保護する。
// これらのフィールドはプレーンテキストとして扱うため、
// bluemondayのStrictPolicyですべてのHTMLタグを除去する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキストのサニタイズ機能のインターフェースを定義する。
// 服薬記録の保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力からすべてのHTMLタグを除去したテキストを返す。
	// script, iframe等のタグは中身ごと、その他のタグはタグのみ除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはいかなるタグも属性も許可しない。
// 薬剤名や用量にマークアップが必要なケースは存在しないため、
// 許可リストを設けず全除去とする。
func NewTextSanitizer() TextSanitizerService {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からすべてのHTMLタグを除去したテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
