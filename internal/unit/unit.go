// Package unit ホストエディタ境界の処理ユニット契約を定義する
// 各ユニットは名前付き・型付きの入出力を宣言し、同じ入力に対して冪等に動作する
package unit

import "context"

// ParamKind パラメータの型種別
type ParamKind string

const (
	KindNumber ParamKind = "number"
	KindBool   ParamKind = "bool"
	KindText   ParamKind = "text"
	KindObject ParamKind = "object" // ラップされたドメインオブジェクト（データセット・メッシュなど）
)

// RunParam 全ユニット共通の実行ゲートのパラメータ名
// falseの間ユニットは実行せず、直前の出力（あれば）を返す
const RunParam = "run"

// ParamSpec 入出力パラメータ1つ分の宣言
type ParamSpec struct {
	Name    string    // パラメータ名
	Kind    ParamKind // 型種別
	Default any       // 既定値（省略時に適用、nilなら必須）
	Desc    string    // 表示用の説明
}

// Values パラメータ名から値へのマップ
type Values map[string]any

// Number 数値パラメータを取得する。欠落・型不一致はフォールバック値を返す
func (v Values) Number(name string, fallback float64) float64 {
	switch n := v[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}

// Bool 真偽値パラメータを取得する
func (v Values) Bool(name string, fallback bool) bool {
	if b, ok := v[name].(bool); ok {
		return b
	}
	return fallback
}

// Text 文字列パラメータを取得する
func (v Values) Text(name string, fallback string) string {
	if s, ok := v[name].(string); ok {
		return s
	}
	return fallback
}

// Object オブジェクトパラメータを生のまま取得する。呼び出し側で型アサーションする
func (v Values) Object(name string) any {
	return v[name]
}

// ProcessorUnit 処理ユニットの統一契約
// 入力が変わるたびに再実行されるため、同じ入力に対して副作用なく
// 同じ出力を返さなければならない（自身のキャッシュ経由は除く）
type ProcessorUnit interface {
	// Name ユニットの表示名を返す
	Name() string

	// Inputs 入力パラメータの宣言を返す
	Inputs() []ParamSpec

	// Outputs 出力パラメータの宣言を返す
	Outputs() []ParamSpec

	// Execute 入力値からユニットを実行し、出力値を返す
	Execute(ctx context.Context, in Values) (Values, error)
}

// ApplyDefaults specsの既定値で欠落パラメータを補完した新しいValuesを返す
func ApplyDefaults(in Values, specs []ParamSpec) Values {
	out := make(Values, len(specs))
	for k, v := range in {
		out[k] = v
	}
	for _, spec := range specs {
		if _, ok := out[spec.Name]; !ok && spec.Default != nil {
			out[spec.Name] = spec.Default
		}
	}
	return out
}
