package interaction

import (
	"time"
)

// ContinueResult is what a continued interaction reports each frame.
type ContinueResult int

const (
	Continuing ContinueResult = iota
	Completed
	ShowPdaHomeScreen
)

func (r ContinueResult) String() string {
	switch r {
	case Continuing:
		return "continuing"
	case Completed:
		return "completed"
	case ShowPdaHomeScreen:
		return "show_pda_home_screen"
	default:
		return "unknown"
	}
}

// Frame is the input observed during one tick.
type Frame struct {
	Now         time.Time
	PrimaryDown bool   // primary interaction key went down this frame
	Escape      bool   // cancel key went down this frame
	Submit      bool   // confirm key went down this frame
	Typed       []rune // characters typed this frame
}

// Action is the contract of an interactable world object.
type Action interface {
	// AdvertiseInteraction is called once each time the object becomes the
	// looked-at object. It updates hint UI and reports whether the object
	// supports continued interaction.
	AdvertiseInteraction() bool

	// PerformInteraction runs on primary key down. Returning true asks the
	// controller to poll ContinueInteraction on following frames.
	PerformInteraction() bool

	// ContinueInteraction is polled every frame of a continued interaction.
	ContinueInteraction(f Frame) ContinueResult

	// CompleteInteraction is called when a continued interaction is
	// terminated from outside.
	CompleteInteraction()
}

// Spender is implemented by one-time objects. Once Spent reports true the
// controller treats the object as if the ray hit nothing.
type Spender interface {
	Spent() bool
}

func isSpent(a Action) bool {
	s, ok := a.(Spender)
	return ok && s.Spent()
}

// BaseAction supplies the default ContinueInteraction and
// CompleteInteraction for one-shot objects.
type BaseAction struct{}

func (BaseAction) ContinueInteraction(Frame) ContinueResult { return Completed }

func (BaseAction) CompleteInteraction() {}

// Kind is the closed set of interactable object kinds.
type Kind int

const (
	KindDoor Kind = iota + 1
	KindKeypad
	KindScreen
	KindDatabrick
	KindWhiteboard
)

func (k Kind) String() string {
	switch k {
	case KindDoor:
		return "door"
	case KindKeypad:
		return "keypad"
	case KindScreen:
		return "screen"
	case KindDatabrick:
		return "databrick"
	case KindWhiteboard:
		return "whiteboard"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindDoor; k <= KindWhiteboard; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Interactable is an Action that declares its kind.
type Interactable interface {
	Action
	Kind() Kind
}
