package domain

type EventType string

const (
	EventTypeAdded    EventType = "ADDED"
	EventTypeModified EventType = "MODIFIED"
	EventTypeDeleted  EventType = "DELETED"
)

// IsDelete reports whether the event announces the object's removal. Trigger
// implementations disagree on the spelling, so both forms are accepted.
func (et EventType) IsDelete() bool {
	return et == EventTypeDeleted || et == "DELETE"
}

const ObjectTypePod = "Pod"

// InboundEvent is one delivery from the event trigger: the two routing
// headers plus the raw object body. A nil Body means no payload was sent.
type InboundEvent struct {
	EventType  EventType
	ObjectType string
	Body       []byte
}

func (e InboundEvent) IsPod() bool {
	return e.ObjectType == ObjectTypePod
}
