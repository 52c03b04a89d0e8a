package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingUnit 実行回数を数える偽ユニット
type countingUnit struct {
	execs int
	err   error
}

func (u *countingUnit) Name() string { return "counting" }

func (u *countingUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "lat", Kind: KindNumber, Default: 35.0},
		{Name: "radius", Kind: KindNumber, Default: 500.0},
		{Name: RunParam, Kind: KindBool, Default: false},
	}
}

func (u *countingUnit) Outputs() []ParamSpec {
	return []ParamSpec{{Name: "result", Kind: KindNumber}}
}

func (u *countingUnit) Execute(ctx context.Context, in Values) (Values, error) {
	u.execs++
	if u.err != nil {
		return nil, u.err
	}
	return Values{"result": in.Number("lat", 0) * 2}, nil
}

func TestCachedUnit(t *testing.T) {
	t.Run("実行ゲートがfalseなら実行せず空を返す", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		out, err := cached.Execute(context.Background(), Values{RunParam: false})
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, 0, inner.execs)
	})

	t.Run("ゲートfalseでも前回の出力があればそれを返す", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		_, err := cached.Execute(context.Background(), Values{RunParam: true, "lat": 10.0})
		require.NoError(t, err)

		out, err := cached.Execute(context.Background(), Values{RunParam: false})
		require.NoError(t, err)
		assert.Equal(t, 20.0, out.Number("result", 0))
		assert.Equal(t, 1, inner.execs)
	})

	t.Run("同一パラメータの再実行はメモから返す", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		in := Values{RunParam: true, "lat": 35.0047, "radius": 500.0}
		first, err := cached.Execute(context.Background(), in)
		require.NoError(t, err)
		second, err := cached.Execute(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, 1, inner.execs)
		assert.Equal(t, first.Number("result", 0), second.Number("result", 0))
	})

	t.Run("丸め桁以下の差はメモヒットする", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		_, err := cached.Execute(context.Background(), Values{RunParam: true, "lat": 35.00471})
		require.NoError(t, err)
		// %.4f丸めで同一キーになる
		_, err = cached.Execute(context.Background(), Values{RunParam: true, "lat": 35.00472})
		require.NoError(t, err)
		assert.Equal(t, 1, inner.execs)
	})

	t.Run("パラメータが変われば再実行する", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		_, err := cached.Execute(context.Background(), Values{RunParam: true, "lat": 35.0})
		require.NoError(t, err)
		out, err := cached.Execute(context.Background(), Values{RunParam: true, "lat": 36.0})
		require.NoError(t, err)

		assert.Equal(t, 2, inner.execs)
		assert.Equal(t, 72.0, out.Number("result", 0))
	})

	t.Run("Reset後は同一パラメータでも再実行する", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)

		in := Values{RunParam: true, "lat": 35.0}
		_, err := cached.Execute(context.Background(), in)
		require.NoError(t, err)
		cached.Reset()
		_, err = cached.Execute(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 2, inner.execs)
	})

	t.Run("実行エラーはメモに残らない", func(t *testing.T) {
		inner := &countingUnit{err: errors.New("boom")}
		cached := NewCachedUnit(inner)

		in := Values{RunParam: true, "lat": 35.0}
		_, err := cached.Execute(context.Background(), in)
		assert.Error(t, err)

		inner.err = nil
		_, err = cached.Execute(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 2, inner.execs)
	})

	t.Run("宣言をラップ対象に委譲する", func(t *testing.T) {
		inner := &countingUnit{}
		cached := NewCachedUnit(inner)
		assert.Equal(t, "counting", cached.Name())
		assert.Len(t, cached.Inputs(), 3)
		assert.Len(t, cached.Outputs(), 1)
	})
}

func TestApplyDefaults(t *testing.T) {
	specs := []ParamSpec{
		{Name: "lat", Kind: KindNumber, Default: 35.0},
		{Name: "name", Kind: KindText},
	}

	t.Run("欠落パラメータに既定値を補完する", func(t *testing.T) {
		out := ApplyDefaults(Values{}, specs)
		assert.Equal(t, 35.0, out.Number("lat", 0))
		_, ok := out["name"]
		assert.False(t, ok)
	})

	t.Run("明示された値は上書きしない", func(t *testing.T) {
		out := ApplyDefaults(Values{"lat": 40.0}, specs)
		assert.Equal(t, 40.0, out.Number("lat", 0))
	})
}

func TestValues(t *testing.T) {
	v := Values{"n": 1.5, "i": 3, "b": true, "s": "hello"}

	t.Run("型に応じた取得とフォールバック", func(t *testing.T) {
		assert.Equal(t, 1.5, v.Number("n", 0))
		assert.Equal(t, 3.0, v.Number("i", 0))
		assert.Equal(t, 9.9, v.Number("missing", 9.9))
		assert.True(t, v.Bool("b", false))
		assert.False(t, v.Bool("missing", false))
		assert.Equal(t, "hello", v.Text("s", ""))
		assert.Equal(t, "fb", v.Text("n", "fb"))
	})
}
