package gate

// Phase tracks how far session resolution has progressed for a client.
type Phase int

const (
	Unresolved Phase = iota
	Resolving
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Session is replaced wholesale, never edited field by field.
type Session struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous is the resolved state without a usable identity.
var Anonymous = Session{}

// State is the explicit session context handed to the gate.
type State struct {
	Phase   Phase
	Session Session
}

// Pending reports whether the remote session check has not finished.
func (s State) Pending() bool { return s.Phase != Resolved }
