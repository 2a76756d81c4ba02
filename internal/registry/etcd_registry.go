package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/auto-dns/podvis/internal/domain"
	"github.com/rs/zerolog"
)

type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Close() error
}

// EtcdRegistry shares the pod snapshot between listener replicas.
type EtcdRegistry struct {
	client   etcdClient
	cfg      *config.EtcdConfig
	hostname string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEtcdRegistry(client etcdClient, cfg *config.EtcdConfig, hostname string, logger zerolog.Logger) *EtcdRegistry {
	return &EtcdRegistry{
		client:   client,
		cfg:      cfg,
		hostname: hostname,
		logger:   logger,
		now:      time.Now,
	}
}

// Put stores the notification under the pod's key, replacing any older one.
func (er *EtcdRegistry) Put(ctx context.Context, n domain.Notification) error {
	value, err := marshalEtcdValue(n, er.hostname, er.now())
	if err != nil {
		return err
	}
	key := keyForPod(er.cfg.PathPrefix, n.PodName)
	if _, err := er.client.Put(ctx, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	er.logger.Debug().Msgf("[etcd_registry] Stored key %s", key)
	return nil
}

// Delete removes the pod's key. Missing keys are not an error.
func (er *EtcdRegistry) Delete(ctx context.Context, podName string) error {
	key := keyForPod(er.cfg.PathPrefix, podName)
	resp, err := er.client.Delete(ctx, key)
	if err != nil {
		er.logger.Warn().Err(err).Msgf("[etcd_registry] Failed to delete key %s", key)
		return err
	}
	if resp.Deleted > 0 {
		er.logger.Info().Msgf("[etcd_registry] Deleted key %s", key)
	}
	return nil
}

// List retrieves every stored notification, ordered by pod name. Entries that
// fail to decode are logged and skipped.
func (er *EtcdRegistry) List(ctx context.Context) ([]domain.Notification, error) {
	resp, err := er.client.Get(ctx, podsPrefix(er.cfg.PathPrefix), clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keyStr := string(kv.Key)
		n, err := unmarshalEtcdValue(er.cfg.PathPrefix, keyStr, kv.Value)
		if err != nil {
			er.logger.Error().Err(err).Msgf("[etcd_registry] Failed to parse key: %s", keyStr)
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PodName < out[j].PodName })
	return out, nil
}

func (er *EtcdRegistry) Close() error {
	return er.client.Close()
}
