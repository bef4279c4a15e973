package game

// BasePoints is awarded for every correct answer before the speed bonus.
const BasePoints = 10

// Score returns the points for a single answer. Correct answers earn the
// base plus a speed bonus of at least 1; incorrect answers and timeouts
// earn nothing. questionTime is the full countdown duration in seconds and
// timeBonus caps the speed bonus.
func Score(correct bool, responseTime, questionTime, timeBonus int) int {
	if !correct {
		return 0
	}

	// The bucket width degenerates to zero when the bonus exceeds the
	// question time; clamp it so scoring stays total.
	step := 1
	if timeBonus > 0 {
		step = questionTime / timeBonus
	}
	if step < 1 {
		step = 1
	}

	bonus := (questionTime - responseTime) / step
	if bonus < 1 {
		bonus = 1
	}
	return BasePoints + bonus
}
