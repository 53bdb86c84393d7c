package medication

import (
	"math"
	"time"

	"github.com/hitoshi/medchart/internal/model"
)

// DiffDays は2つの日付の差を日数（切り上げ）で返す。
// 絶対値を取るため引数の順序には依存しない。
func DiffDays(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// TotalDoses は頻度と日付範囲から想定服薬回数を導出する。
// 未知の頻度値はDailyと同じ扱いとする。結果は常に非負の整数。
// 開始日と終了日が同じ場合、Daily/As Neededでは0となる。
func TotalDoses(frequency model.Frequency, start, end time.Time) int {
	days := DiffDays(start, end)

	switch frequency {
	case model.FrequencyDaily:
		return days
	case model.FrequencyTwiceDaily:
		return days * 2
	case model.FrequencyThreeTimesDaily:
		return days * 3
	case model.FrequencyWeekly:
		return int(math.Ceil(float64(days) / 7))
	case model.FrequencyAsNeeded:
		return days
	default:
		return days
	}
}

// AdherenceRate はチャート全体の服薬遵守率（%）を返す。
// 想定回数の合計が0の場合はゼロ除算を避けて0を返す。
func AdherenceRate(meds []*model.Medication) int {
	var taken, total int
	for _, med := range meds {
		taken += med.TimesTaken
		total += med.TotalDoses
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(taken) / float64(total) * 100))
}
