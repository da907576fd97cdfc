package detector

// Connection is an edge of the hand skeleton between two landmark indices.
type Connection struct {
	From, To int
}

// Finger groups the skeleton edges and joints belonging to one part of the hand.
type Finger int

const (
	Palm Finger = iota
	Thumb
	Index
	Middle
	Ring
	Pinky
)

func (f Finger) String() string {
	switch f {
	case Palm:
		return "palm"
	case Thumb:
		return "thumb"
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	}
	return "unknown"
}

// Skeleton edges per hand part, matching the MediaPipe hand model.
var (
	PalmConnections = []Connection{
		{Wrist, ThumbCMC}, {Wrist, IndexMCP}, {MiddleMCP, RingMCP},
		{RingMCP, PinkyMCP}, {IndexMCP, MiddleMCP}, {Wrist, PinkyMCP},
	}
	ThumbConnections  = []Connection{{ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip}}
	IndexConnections  = []Connection{{IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip}}
	MiddleConnections = []Connection{{MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip}}
	RingConnections   = []Connection{{RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip}}
	PinkyConnections  = []Connection{{PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip}}
)

// Connections is the full hand skeleton: 21 edges over the 21 landmarks.
var Connections = concat(
	PalmConnections,
	ThumbConnections,
	IndexConnections,
	MiddleConnections,
	RingConnections,
	PinkyConnections,
)

// FingerOf returns the hand part a landmark belongs to. The wrist and the
// base joint of every finger count as palm.
func FingerOf(landmark int) Finger {
	switch landmark {
	case Wrist, ThumbCMC, IndexMCP, MiddleMCP, RingMCP, PinkyMCP:
		return Palm
	case ThumbMCP, ThumbIP, ThumbTip:
		return Thumb
	case IndexPIP, IndexDIP, IndexTip:
		return Index
	case MiddlePIP, MiddleDIP, MiddleTip:
		return Middle
	case RingPIP, RingDIP, RingTip:
		return Ring
	}
	return Pinky
}

// FingerOfConnection returns the hand part an edge belongs to.
func FingerOfConnection(c Connection) Finger {
	groups := [][]Connection{
		PalmConnections, ThumbConnections, IndexConnections,
		MiddleConnections, RingConnections, PinkyConnections,
	}
	for f, group := range groups {
		for _, g := range group {
			if g == c {
				return Finger(f)
			}
		}
	}
	return Palm
}

func concat(groups ...[]Connection) []Connection {
	var out []Connection
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
