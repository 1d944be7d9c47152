package catching

import (
	"errors"
	"fmt"
)

// 捕獲失敗の種別。UIはそれぞれ異なるメッセージを表示する必要があるため
// （近づく・別の対象を選ぶ・人を集める）、種別ごとに区別できるエラーにしています。
var (
	// ErrSpawnNotFound はスポーンが存在しない（既に捕獲済みか掃除済み）ことを表します。
	ErrSpawnNotFound = errors.New("spawn not found")

	// ErrSpawnExpired はスポーンの期限が切れていることを表します。
	ErrSpawnExpired = errors.New("spawn expired")

	// ErrAlreadyCaught は削除の競争に負けた（他のプレイヤーが先に捕獲した）ことを表します。
	ErrAlreadyCaught = errors.New("spawn already caught by another player")
)

// OutOfRangeError は捕獲距離の超過を表します。現在距離としきい値を保持し、
// 「あと何メートル近づけばよいか」をUIに表示できるようにします。
type OutOfRangeError struct {
	DistanceMeters  float64
	ThresholdMeters float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %.0fm away, must be within %.0fm", e.DistanceMeters, e.ThresholdMeters)
}

// QuorumNotMetError はジムスポーンのクォーラム不足を表します。
type QuorumNotMetError struct {
	Current  int
	Required int
}

func (e *QuorumNotMetError) Error() string {
	return fmt.Sprintf("quorum not met: %d of %d players at gym", e.Current, e.Required)
}
