package model

import "time"

// Frequency は服薬頻度を表す。閉じた値集合。
type Frequency string

const (
	FrequencyDaily           Frequency = "Daily"
	FrequencyTwiceDaily      Frequency = "Twice Daily"
	FrequencyThreeTimesDaily Frequency = "Three Times Daily"
	FrequencyWeekly          Frequency = "Weekly"
	FrequencyAsNeeded        Frequency = "As Needed"
)

// IsValid は既知の頻度値かどうかを返す。
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyTwiceDaily, FrequencyThreeTimesDaily,
		FrequencyWeekly, FrequencyAsNeeded:
		return true
	}
	return false
}

// Medication は1件の服薬記録を表す。
// 必ず1つのアカウントに属し、アカウント間で共有されない。
// IDは生成後不変。UpdatedAtは更新成功のたびに刷新される。
type Medication struct {
	ID         string
	AccountID  string
	Name       string
	Dosage     string
	Frequency  Frequency
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
	ImageURL   string
	TotalDoses int
	TimesTaken int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
