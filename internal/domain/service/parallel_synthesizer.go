package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// maxSynthesisGoroutines 同時に走らせる合成ゴルーチンの上限
const maxSynthesisGoroutines = 8

// SynthesisOutcome 地物1件分の合成結果
// 成功ならResultが埋まり、失敗ならSkipReasonに理由が入る（例外は握り潰さない）
type SynthesisOutcome[T any] struct {
	Index      int    // 入力リスト内の位置（出力スロットと1:1対応）
	Result     *T     // 生成されたジオメトリ（スキップ時はnil）
	SkipReason string // スキップ理由（成功時は空）
}

// BatchOutcome 並列合成1バッチ分の集計結果
type BatchOutcome[T any] struct {
	Outcomes    []SynthesisOutcome[T] // 入力位置で添字付けされた結果スロット
	Built       int                   // 成功件数
	Skipped     int                   // スキップ件数
	SkipReasons []string              // スキップ理由の一覧
}

// RunParallel n件の地物を並列に合成する
// 各地物は読み取り専用の共有入力に対して独立に処理され、結果は事前確保した
// インデックス対応スロットに書き込まれる。個々の失敗はスキップとして集計され、
// バッチ全体を中断することはない
func RunParallel[T any](ctx context.Context, kind string, n int, work func(i int) SynthesisOutcome[T]) BatchOutcome[T] {
	start := time.Now()
	log.Printf("🚀 %s合成開始: %d件を並列処理", kind, n)

	outcomes := make([]SynthesisOutcome[T], n)
	semaphore := make(chan struct{}, maxSynthesisGoroutines)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				outcomes[index] = SynthesisOutcome[T]{Index: index, SkipReason: "キャンセルされました"}
				return
			}
			outcomes[index] = work(index)
		}(i)
	}
	wg.Wait()

	result := BatchOutcome[T]{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.SkipReason != "" {
			result.Skipped++
			result.SkipReasons = append(result.SkipReasons, o.SkipReason)
		} else {
			result.Built++
		}
	}

	log.Printf("✅ %s合成完了: %v (成功:%d, スキップ:%d)", kind, time.Since(start), result.Built, result.Skipped)
	return result
}
