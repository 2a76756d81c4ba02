package event

import (
	"bytes"
	"encoding/json"

	"github.com/auto-dns/podvis/internal/domain"
)

// PodSummary is the subset of a Pod body the classifier works with.
type PodSummary struct {
	Name     string
	Statuses []domain.ContainerStatus
}

// podWire holds only the Pod fields the classifier reads, so a malformed
// field elsewhere in the object (labels, timestamps) cannot fail the decode.
type podWire struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Status *struct {
		ContainerStatuses []containerStatusWire `json:"containerStatuses"`
	} `json:"status"`
}

type containerStatusWire struct {
	Name  string          `json:"name"`
	State json.RawMessage `json:"state"`
}

type waitingWire struct {
	Reason *string `json:"reason"`
}

// ParsePod decodes a raw Pod object. Checks run in the order the classifier
// needs them: container statuses first, then the pod name.
func ParsePod(body []byte) (PodSummary, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return PodSummary{}, ErrNoContainerStatuses
	}

	var pod podWire
	if err := json.Unmarshal(trimmed, &pod); err != nil {
		return PodSummary{}, NewDecodeError(err)
	}

	// A present but empty list decodes to a non-nil slice; only an absent or
	// null list stays nil.
	if pod.Status == nil || pod.Status.ContainerStatuses == nil {
		return PodSummary{}, ErrNoContainerStatuses
	}

	if pod.Metadata.Name == "" {
		return PodSummary{}, NewMissingFieldError("metadata.name")
	}

	statuses := make([]domain.ContainerStatus, 0, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		statuses = append(statuses, domain.ContainerStatus{
			Name:  cs.Name,
			State: parseContainerState(cs.State),
		})
	}
	return PodSummary{Name: pod.Metadata.Name, Statuses: statuses}, nil
}

// parseContainerState decides the state by key presence: a "running" key wins
// over "terminated", which wins over "waiting", whatever their values hold.
// A state that is not a JSON object is unknown.
func parseContainerState(raw json.RawMessage) domain.ContainerState {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return domain.Unknown()
	}

	if _, ok := keys["running"]; ok {
		return domain.Running()
	}
	if _, ok := keys["terminated"]; ok {
		return domain.Terminated()
	}
	waiting, ok := keys["waiting"]
	if !ok {
		return domain.Unknown()
	}

	// A reason that is not a string is ignored rather than failing the pod.
	var w waitingWire
	if err := json.Unmarshal(waiting, &w); err != nil {
		return domain.Waiting(nil)
	}
	return domain.Waiting(w.Reason)
}
