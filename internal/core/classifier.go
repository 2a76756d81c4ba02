package core

import (
	"errors"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/auto-dns/podvis/internal/event"
)

// ErrNotPod is returned by Classify for events about any other object type.
var ErrNotPod = errors.New("event is not about a pod")

// Classify turns an inbound event into the notification it should produce.
// Events that produce nothing return ErrNotPod or
// event.ErrNoContainerStatuses; malformed bodies return *event.DecodeError or
// *event.MissingFieldError.
func Classify(ev domain.InboundEvent) (domain.Notification, error) {
	if !ev.IsPod() {
		return domain.Notification{}, ErrNotPod
	}
	pod, err := event.ParsePod(ev.Body)
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.NewNotification(pod.Name, ev.EventType, pod.Statuses), nil
}
