package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/auto-dns/podvis/internal/domain"
)

// fakeEtcd implements etcdClient over a map. Get treats any option as
// WithPrefix, the only one the registry passes.
type fakeEtcd struct {
	mu     sync.Mutex
	kv     map[string]string
	putErr error
	closed bool
}

func newFakeEtcd() *fakeEtcd {
	return &fakeEtcd{kv: map[string]string{}}
}

func (f *fakeEtcd) Get(_ context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &clientv3.GetResponse{}
	keys := make([]string, 0, len(f.kv))
	for k := range f.kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if (len(opts) > 0 && strings.HasPrefix(k, key)) || k == key {
			resp.Kvs = append(resp.Kvs, &mvccpb.KeyValue{Key: []byte(k), Value: []byte(f.kv[k])})
		}
	}
	return resp, nil
}

func (f *fakeEtcd) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.kv[key] = val
	return &clientv3.PutResponse{}, nil
}

func (f *fakeEtcd) Delete(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &clientv3.DeleteResponse{}
	if _, ok := f.kv[key]; ok {
		delete(f.kv, key)
		resp.Deleted = 1
	}
	return resp, nil
}

func (f *fakeEtcd) Close() error {
	f.closed = true
	return nil
}

func newTestRegistry(client etcdClient) *EtcdRegistry {
	reg := NewEtcdRegistry(client, &config.EtcdConfig{PathPrefix: "/podvis/"}, "listener-0", zerolog.Nop())
	reg.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return reg
}

func notification(pod string, states map[string]string) domain.Notification {
	return domain.Notification{NumPods: 1, ContainerStates: states, PodName: pod, EventType: domain.EventTypeAdded}
}

func TestEtcdRegistry_PutStoresUnderPodKey(t *testing.T) {
	client := newFakeEtcd()
	reg := newTestRegistry(client)

	require.NoError(t, reg.Put(context.Background(), notification("web-1", map[string]string{"app": "running"})))

	raw, ok := client.kv["/podvis/pods/web-1"]
	require.True(t, ok)
	assert.JSONEq(t, `{
		"notification": {"numPods":1,"containerStates":{"app":"running"},"podName":"web-1","eventType":"ADDED"},
		"owner": "listener-0",
		"updated": "2024-01-02T03:04:05Z"
	}`, raw)
}

func TestEtcdRegistry_ListSkipsUndecodable(t *testing.T) {
	client := newFakeEtcd()
	reg := newTestRegistry(client)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, notification("web-2", map[string]string{"app": "terminated"})))
	require.NoError(t, reg.Put(ctx, notification("web-1", map[string]string{"app": "running"})))
	client.kv["/podvis/pods/broken"] = "{not json"
	client.kv["/podvis/pods/renamed"] = `{"notification":{"podName":"other"}}`
	client.kv["/elsewhere/pods/web-9"] = `{}`

	got, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "web-1", got[0].PodName)
	assert.Equal(t, "web-2", got[1].PodName)
	assert.Equal(t, map[string]string{"app": "terminated"}, got[1].ContainerStates)
}

func TestEtcdRegistry_Delete(t *testing.T) {
	client := newFakeEtcd()
	reg := newTestRegistry(client)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, notification("web-1", map[string]string{})))
	require.NoError(t, reg.Delete(ctx, "web-1"))
	require.NoError(t, reg.Delete(ctx, "web-1"))
	assert.Empty(t, client.kv)
}

func TestEtcdRegistry_PutError(t *testing.T) {
	client := newFakeEtcd()
	client.putErr = errors.New("etcdserver: request timed out")
	err := newTestRegistry(client).Put(context.Background(), notification("web-1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put /podvis/pods/web-1")
}

func TestEtcdRegistry_Close(t *testing.T) {
	client := newFakeEtcd()
	require.NoError(t, newTestRegistry(client).Close())
	assert.True(t, client.closed)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "/podvis/pods/web-1", keyForPod("/podvis", "web-1"))
	assert.Equal(t, "/podvis/pods/web-1", keyForPod("/podvis/", "web-1"))
	assert.Equal(t, "web-1", podFromKey("/podvis", "/podvis/pods/web-1"))
}
