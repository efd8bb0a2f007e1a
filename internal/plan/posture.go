package plan

// Posture ranks how urgent a plan is. A running plan may only be replaced by
// one with a strictly higher posture.
type Posture int

const (
	Neutral Posture = iota
	Offensive
	Defensive
	Save
	Override
)

func (p Posture) String() string {
	switch p {
	case Neutral:
		return "neutral"
	case Offensive:
		return "offensive"
	case Defensive:
		return "defensive"
	case Save:
		return "save"
	case Override:
		return "override"
	default:
		return "unknown"
	}
}

// LessUrgentThan reports whether p ranks below other.
func (p Posture) LessUrgentThan(other Posture) bool { return p < other }
