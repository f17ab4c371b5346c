package market

type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionAttacker   Position = "attacker"
)

// Positions returns positions in roster order.
func Positions() []Position {
	return []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker}
}

func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker:
		return true
	}
	return false
}
