package crypto

// Rating is the coarse label shown next to a password.
type Rating string

const (
	RatingWeak   Rating = "Weak"
	RatingFair   Rating = "Fair"
	RatingGood   Rating = "Good"
	RatingStrong Rating = "Strong"
)

// Strength describes how strong a password with the given settings will be.
// Width is the fill of the strength bar and Color its tag.
type Strength struct {
	Score  int    `json:"score"`
	Rating Rating `json:"rating"`
	Width  string `json:"width"`
	Color  string `json:"color"`
}

// MaxScore is the highest score ScoreStrength can produce.
const MaxScore = 7

// ScoreStrength rates the settings a password is generated from. It does not
// look at any particular password.
func ScoreStrength(length int, opts Options) Strength {
	score := 0

	for _, threshold := range []int{8, 12, 16} {
		if length >= threshold {
			score++
		}
	}
	score += opts.Enabled()

	switch {
	case score <= 2:
		return Strength{Score: score, Rating: RatingWeak, Width: "25%", Color: "red"}
	case score <= 4:
		return Strength{Score: score, Rating: RatingFair, Width: "50%", Color: "yellow"}
	case score <= 6:
		return Strength{Score: score, Rating: RatingGood, Width: "75%", Color: "blue"}
	default:
		return Strength{Score: score, Rating: RatingStrong, Width: "100%", Color: "green"}
	}
}
