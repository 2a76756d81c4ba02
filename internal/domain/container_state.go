package domain

type StateKind int

const (
	StateUnknown StateKind = iota
	StateRunning
	StateTerminated
	StateWaiting
)

const (
	LabelRunning    = "running"
	LabelTerminated = "terminated"
	LabelWaiting    = "waiting"
)

// ContainerState is the parsed form of a container's state object. Reason is
// only meaningful for StateWaiting and is nil when the cluster gave none.
type ContainerState struct {
	Kind   StateKind
	Reason *string
}

func Running() ContainerState    { return ContainerState{Kind: StateRunning} }
func Terminated() ContainerState { return ContainerState{Kind: StateTerminated} }
func Unknown() ContainerState    { return ContainerState{Kind: StateUnknown} }

func Waiting(reason *string) ContainerState {
	return ContainerState{Kind: StateWaiting, Reason: reason}
}

// Label renders the state the way the visualizer expects it. Anything that is
// neither running nor terminated is reported as waiting, or as the waiting
// reason verbatim when the cluster sent one, even an empty one.
func (s ContainerState) Label() string {
	switch s.Kind {
	case StateRunning:
		return LabelRunning
	case StateTerminated:
		return LabelTerminated
	}
	if s.Kind == StateWaiting && s.Reason != nil {
		return *s.Reason
	}
	return LabelWaiting
}

type ContainerStatus struct {
	Name  string
	State ContainerState
}
