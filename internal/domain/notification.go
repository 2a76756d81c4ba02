package domain

import "fmt"

// DeliveryIDHeader carries the id shared by every copy of one notification,
// on HTTP requests and NATS messages alike.
const DeliveryIDHeader = "X-Podvis-Delivery-Id"

// Notification is the compact pod summary pushed to the visualizer.
type Notification struct {
	NumPods         int               `json:"numPods"`
	ContainerStates map[string]string `json:"containerStates"`
	PodName         string            `json:"podName"`
	EventType       EventType         `json:"eventType"`
}

// NewNotification labels every status. Later entries win on duplicate names.
func NewNotification(podName string, eventType EventType, statuses []ContainerStatus) Notification {
	states := make(map[string]string, len(statuses))
	for _, cs := range statuses {
		states[cs.Name] = cs.State.Label()
	}
	return Notification{
		NumPods:         1,
		ContainerStates: states,
		PodName:         podName,
		EventType:       eventType,
	}
}

func (n Notification) Render() string {
	return fmt.Sprintf("pod=%s event=%s states=%v", n.PodName, n.EventType, n.ContainerStates)
}
