package service

import (
	"fmt"

	"CityScape3D/internal/domain/model"
)

// CleanupTolerance 近接重複点とみなす距離（メートル）
const CleanupTolerance = 0.01

// CleanFootprint フットプリントの点列を整形する
// 直前の採用点から0.01m以内の点を落とし、最後にリングを強制的に閉じる
// （末尾が先頭から0.01mより離れていれば先頭点を複製して追加する）
// 整形後4点未満（相異なる3点＋閉じ点）のフットプリントは不正としてエラーを返す
// この操作は冪等: CleanFootprint(CleanFootprint(P)) == CleanFootprint(P)
func CleanFootprint(points []model.Point3) ([]model.Point3, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("フットプリントが空です")
	}

	cleaned := make([]model.Point3, 0, len(points)+1)
	cleaned = append(cleaned, points[0])
	for _, p := range points[1:] {
		if p.DistanceXY(cleaned[len(cleaned)-1]) < CleanupTolerance {
			continue
		}
		cleaned = append(cleaned, p)
	}

	// 末尾が先頭の近傍で終わる場合は末尾を先頭そのものに揃え、
	// 離れている場合は先頭点を追加して閉じる
	last := cleaned[len(cleaned)-1]
	if last.DistanceXY(cleaned[0]) < CleanupTolerance {
		cleaned[len(cleaned)-1] = cleaned[0]
	} else {
		cleaned = append(cleaned, cleaned[0])
	}

	if len(cleaned) < 4 {
		return nil, fmt.Errorf("整形後のフットプリントが%d点しかありません（4点必要）", len(cleaned))
	}
	return cleaned, nil
}
