package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricTag(t *testing.T) {
	t.Run("素の数値をパースする", func(t *testing.T) {
		v := ParseMetricTag("12")
		require.NotNil(t, v)
		assert.Equal(t, 12.0, *v)
	})

	t.Run("単位サフィックスを取り除く", func(t *testing.T) {
		for _, raw := range []string{"12.5 m", "12.5m", "12.5 meters", "12.5 metre"} {
			v := ParseMetricTag(raw)
			require.NotNil(t, v, raw)
			assert.Equal(t, 12.5, *v, raw)
		}
	})

	t.Run("カンマ小数点を許容する", func(t *testing.T) {
		v := ParseMetricTag("12,5")
		require.NotNil(t, v)
		assert.Equal(t, 12.5, *v)
	})

	t.Run("パース不能はnilを返しエラーにしない", func(t *testing.T) {
		assert.Nil(t, ParseMetricTag(""))
		assert.Nil(t, ParseMetricTag("tall"))
		assert.Nil(t, ParseMetricTag("12 ft 5 in"))
	})
}

func TestParseIntTag(t *testing.T) {
	t.Run("整数をパースする", func(t *testing.T) {
		v := ParseIntTag(" 3 ")
		require.NotNil(t, v)
		assert.Equal(t, 3, *v)
	})

	t.Run("小数表記の階数を切り捨てる", func(t *testing.T) {
		v := ParseIntTag("2.0")
		require.NotNil(t, v)
		assert.Equal(t, 2, *v)
	})

	t.Run("パース不能はnilを返す", func(t *testing.T) {
		assert.Nil(t, ParseIntTag(""))
		assert.Nil(t, ParseIntTag("two"))
	})
}
