package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/auto-dns/podvis/internal/domain"
)

type etcdRecord struct {
	Notification domain.Notification `json:"notification"`
	Owner        string              `json:"owner"`
	Updated      time.Time           `json:"updated"`
}

func marshalEtcdValue(n domain.Notification, owner string, now time.Time) (string, error) {
	b, err := json.Marshal(etcdRecord{
		Notification: n,
		Owner:        owner,
		Updated:      now.UTC(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalEtcdValue(prefix, key string, raw []byte) (domain.Notification, error) {
	var wire etcdRecord
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Notification{}, fmt.Errorf("decode etcd value: %w", err)
	}
	if name := podFromKey(prefix, key); wire.Notification.PodName != name {
		return domain.Notification{}, fmt.Errorf("etcd key %s holds pod %q", key, wire.Notification.PodName)
	}
	return wire.Notification, nil
}
