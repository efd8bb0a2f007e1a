// Package strategy holds stateless decision policies shared by steps.
package strategy

import (
	"math"

	"github.com/strikerbot/planner/internal/planning"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

// KickStrategy picks the direction the ball should leave in. Implementations
// are pure functions of their arguments and safe to share.
type KickStrategy interface {
	KickDirection(in *core.Snapshot) vmath.Vector3
	KickDirectionAt(in *core.Snapshot, ballPosition vmath.Vector3) vmath.Vector3
	// KickDirectionWithEasyKick starts from easyKick, the direction the ball
	// would naturally go, and corrects it only as much as needed.
	KickDirectionWithEasyKick(in *core.Snapshot, ballPosition, easyKick vmath.Vector3) vmath.Vector3
	LooksViable(car core.CarState, ballPosition vmath.Vector3) bool
}

// easyKick is the direction the ball goes if the car simply drives through it.
func easyKick(in *core.Snapshot, ballPosition vmath.Vector3) vmath.Vector3 {
	if car, ok := in.MyCar(); ok {
		return ballPosition.Sub(car.Position)
	}
	return EnemyGoalDirection(in.Team, ballPosition)
}

// EnemyGoalDirection points from ballPosition at the centre of the goal team
// attacks.
func EnemyGoalDirection(team core.Team, ballPosition vmath.Vector3) vmath.Vector3 {
	return planning.EnemyGoal(team).Center.Sub(ballPosition).Flatten().ToVector3()
}

// KickAtEnemyGoal aims between the enemy posts.
type KickAtEnemyGoal struct{}

const postPadding = 6.0

func (k KickAtEnemyGoal) KickDirection(in *core.Snapshot) vmath.Vector3 {
	return k.KickDirectionAt(in, in.Ball.Position)
}

func (k KickAtEnemyGoal) KickDirectionAt(in *core.Snapshot, ballPosition vmath.Vector3) vmath.Vector3 {
	return k.KickDirectionWithEasyKick(in, ballPosition, easyKick(in, ballPosition))
}

func (KickAtEnemyGoal) KickDirectionWithEasyKick(in *core.Snapshot, ballPosition, easy vmath.Vector3) vmath.Vector3 {
	goal := planning.EnemyGoal(in.Team)
	return betweenPosts(easy.Flatten(),
		goal.LeftPost(postPadding).Sub(ballPosition).Flatten(),
		goal.RightPost(postPadding).Sub(ballPosition).Flatten(),
	).ToVector3()
}

func (KickAtEnemyGoal) LooksViable(car core.CarState, ballPosition vmath.Vector3) bool {
	return planning.GenerousShotAngle(planning.EnemyGoal(car.Team), ballPosition.Flatten())
}

// betweenPosts keeps easy if it already passes between the posts, otherwise
// swings it onto the nearer post.
func betweenPosts(easy, toLeft, toRight vmath.Vector2) vmath.Vector2 {
	if insideCone(easy, toLeft, toRight) {
		return easy
	}
	return nearerEdge(easy, toLeft, toRight)
}

// insideCone reports whether dir lies clockwise of toLeft and anticlockwise
// of toRight.
func insideCone(dir, toLeft, toRight vmath.Vector2) bool {
	return dir.CorrectionAngle(toRight) < 0 && dir.CorrectionAngle(toLeft) > 0
}

func nearerEdge(dir, toLeft, toRight vmath.Vector2) vmath.Vector2 {
	if math.Abs(dir.CorrectionAngle(toRight)) < math.Abs(dir.CorrectionAngle(toLeft)) {
		return toRight
	}
	return toLeft
}

// KickAwayFromOwnGoal clears the ball anywhere except toward the defended
// goal mouth.
type KickAwayFromOwnGoal struct{}

// dangerPadding widens the goal mouth; negative padding moves posts outward.
const dangerPadding = -15.0

func (k KickAwayFromOwnGoal) KickDirection(in *core.Snapshot) vmath.Vector3 {
	return k.KickDirectionAt(in, in.Ball.Position)
}

func (k KickAwayFromOwnGoal) KickDirectionAt(in *core.Snapshot, ballPosition vmath.Vector3) vmath.Vector3 {
	return k.KickDirectionWithEasyKick(in, ballPosition, easyKick(in, ballPosition))
}

func (KickAwayFromOwnGoal) KickDirectionWithEasyKick(in *core.Snapshot, ballPosition, easy vmath.Vector3) vmath.Vector3 {
	goal := planning.OwnGoal(in.Team)

	// Behind our own goal line there is no safe cone; clear toward the corner.
	if math.Abs(ballPosition.Y) > math.Abs(goal.Center.Y) {
		return vmath.V3(vmath.NonZeroSignum(ballPosition.X), -goal.Side, 0)
	}

	flat := easy.Flatten()
	toLeft := goal.LeftPost(dangerPadding).Sub(ballPosition).Flatten()
	toRight := goal.RightPost(dangerPadding).Sub(ballPosition).Flatten()
	if !insideCone(flat, toLeft, toRight) {
		return flat.ToVector3()
	}
	return nearerEdge(flat, toLeft, toRight).ToVector3()
}

func (KickAwayFromOwnGoal) LooksViable(core.CarState, vmath.Vector3) bool { return true }
