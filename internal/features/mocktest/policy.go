package mocktest

// Пороги и награды. Статус определяется первым: проваленная попытка
// всегда получает RewardFailed, даже если процент попадает в высокие пороги.
const (
	AceThreshold   = 90.0
	GreatThreshold = 75.0

	RewardAce    int64 = 50
	RewardGreat  int64 = 30
	RewardPassed int64 = 10
	RewardFailed int64 = -5

	ReasonAce    = "ace performance"
	ReasonGreat  = "great performance"
	ReasonPassed = "passed"
	ReasonFailed = "failed"
)

// Evaluate переводит процент попытки в статус, изменение кармы и причину.
func Evaluate(percentage, passingThreshold float64) (Status, int64, string) {
	if percentage < passingThreshold {
		return StatusFailed, RewardFailed, ReasonFailed
	}
	switch {
	case percentage >= AceThreshold:
		return StatusPassed, RewardAce, ReasonAce
	case percentage >= GreatThreshold:
		return StatusPassed, RewardGreat, ReasonGreat
	default:
		return StatusPassed, RewardPassed, ReasonPassed
	}
}
