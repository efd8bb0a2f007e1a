package physics

// Car kinematics in field units.
const (
	CarMaxSpeed         = 46.0
	SupersonicSpeed     = 44.0
	ThrottleCoastSpeed  = 28.2
	BoostAcceleration   = 19.83
	BoostConsumption    = 33.3
	BrakeAcceleration   = 70.0
	FrontFlipSpeedBoost = 10.0
	FrontFlipSeconds    = 1.25
	// FrontFlipMinSpeed is the slowest speed at which a front flip gains time.
	FrontFlipMinSpeed = 20.0
)

// FrontFlipDistance is how far a front flip started at speed carries the car.
func FrontFlipDistance(speed float64) float64 {
	boosted := speed + FrontFlipSpeedBoost
	if boosted > CarMaxSpeed {
		boosted = CarMaxSpeed
	}
	return boosted * FrontFlipSeconds
}

// throttle acceleration curve: speed -> acceleration
var throttleCurve = [][2]float64{
	{0, 32},
	{28, 3.2},
	{ThrottleCoastSpeed, 0},
}

// ThrottleAcceleration returns the forward acceleration from full throttle at
// the given forward speed, interpolating the throttle curve.
func ThrottleAcceleration(speed float64) float64 {
	if speed <= throttleCurve[0][0] {
		return throttleCurve[0][1]
	}
	for i := 1; i < len(throttleCurve); i++ {
		lo, hi := throttleCurve[i-1], throttleCurve[i]
		if speed <= hi[0] {
			f := (speed - lo[0]) / (hi[0] - lo[0])
			return lo[1] + f*(hi[1]-lo[1])
		}
	}
	return 0
}
