package selection

// None is the highlighted index when nothing is selectable
const None = -1

// Direction represents cycling direction
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// State holds the highlight and the scroll window over the result list
type State struct {
	Highlighted    int
	ViewportOffset int
	ViewportHeight int
}
