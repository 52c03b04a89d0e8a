package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/model"
)

func TestCleanFootprint(t *testing.T) {
	square := []model.Point3{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
		{X: 0, Y: 10},
	}

	t.Run("開いたリングは強制的に閉じられる", func(t *testing.T) {
		cleaned, err := CleanFootprint(square)
		require.NoError(t, err)
		assert.Len(t, cleaned, 5)
		assert.Equal(t, cleaned[0], cleaned[len(cleaned)-1])
	})

	t.Run("近接重複点は除去される", func(t *testing.T) {
		withDup := []model.Point3{
			{X: 0, Y: 0},
			{X: 0.005, Y: 0}, // 先頭から0.01m未満
			{X: 10, Y: 0},
			{X: 10, Y: 10},
			{X: 0, Y: 10},
		}
		cleaned, err := CleanFootprint(withDup)
		require.NoError(t, err)
		assert.Len(t, cleaned, 5)
	})

	t.Run("冪等性: 2回適用しても結果は変わらない", func(t *testing.T) {
		once, err := CleanFootprint(square)
		require.NoError(t, err)
		twice, err := CleanFootprint(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("相異なる3点未満はエラー", func(t *testing.T) {
		degenerate := []model.Point3{
			{X: 0, Y: 0},
			{X: 10, Y: 0},
			{X: 0.001, Y: 0.001}, // 整形で先頭に吸収される
		}
		_, err := CleanFootprint(degenerate)
		assert.Error(t, err)
	})

	t.Run("空入力はエラー", func(t *testing.T) {
		_, err := CleanFootprint(nil)
		assert.Error(t, err)
	})
}
