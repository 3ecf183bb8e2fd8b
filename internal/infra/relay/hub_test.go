package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEndpoint struct {
	subject    string
	frames     chan []byte
	removed    atomic.Bool
	lateFrames atomic.Int32
}

func newFakeEndpoint(buffer int) *fakeEndpoint {
	return &fakeEndpoint{frames: make(chan []byte, buffer)}
}

func newBoundEndpoint(buffer int, subject string) *fakeEndpoint {
	return &fakeEndpoint{subject: subject, frames: make(chan []byte, buffer)}
}

func (f *fakeEndpoint) Subject() string {
	return f.subject
}

func (f *fakeEndpoint) Deliver(frame []byte) bool {
	if f.removed.Load() {
		f.lateFrames.Add(1)
	}
	select {
	case f.frames <- frame:
		return true
	default:
		return false
	}
}

func TestHub_PublishReachesEveryConnectionInRoom(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	a, b, other := newFakeEndpoint(1), newFakeEndpoint(1), newFakeEndpoint(1)

	hub.Announce(a, "u1")
	hub.Announce(b, "u1")
	hub.Announce(other, "u2")

	assert.Equal(t, 2, hub.Publish("u1", []byte("hi")))
	assert.Equal(t, []byte("hi"), <-a.frames)
	assert.Equal(t, []byte("hi"), <-b.frames)
	assert.Empty(t, other.frames)
}

func TestHub_PublishToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(newDiscardLogger())

	assert.Equal(t, 0, hub.Publish("nobody", []byte("hi")))
}

func TestHub_ReannounceMovesConnection(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	ep := newFakeEndpoint(2)

	hub.Announce(ep, "u1")
	hub.Announce(ep, "u1")
	assert.Equal(t, 1, hub.Connections("u1"))

	hub.Announce(ep, "u2")
	assert.Equal(t, 0, hub.Connections("u1"))
	assert.Equal(t, 1, hub.Connections("u2"))

	userID, ok := hub.UserOf(ep)
	require.True(t, ok)
	assert.Equal(t, "u2", userID)

	assert.Equal(t, 0, hub.Publish("u1", []byte("old room")))
	assert.Equal(t, 1, hub.Publish("u2", []byte("new room")))
}

func TestHub_PublishVerifiedSkipsAnonymousEndpoints(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	bound, anonymous := newBoundEndpoint(1, "u1"), newFakeEndpoint(1)

	hub.Announce(bound, "u1")
	hub.Announce(anonymous, "u1")

	assert.Equal(t, 1, hub.PublishVerified("u1", []byte("private")))
	assert.Equal(t, []byte("private"), <-bound.frames)
	assert.Empty(t, anonymous.frames)

	assert.Equal(t, 2, hub.Publish("u1", []byte("public")))
}

func TestHub_RemoveStopsDelivery(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	ep := newFakeEndpoint(1)

	hub.Announce(ep, "u1")
	hub.Remove(ep)
	hub.Remove(ep)

	assert.Equal(t, 0, hub.Publish("u1", []byte("hi")))
	assert.Equal(t, 0, hub.Connections("u1"))
	_, ok := hub.UserOf(ep)
	assert.False(t, ok)

	// never announced
	hub.Remove(newFakeEndpoint(1))
}

func TestHub_FullBufferDropsOnlyForThatConnection(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	slow, fast := newFakeEndpoint(1), newFakeEndpoint(4)
	hub.Announce(slow, "u1")
	hub.Announce(fast, "u1")

	assert.Equal(t, 2, hub.Publish("u1", []byte("1")))
	assert.Equal(t, 1, hub.Publish("u1", []byte("2")))
	assert.Len(t, fast.frames, 2)
	assert.Len(t, slow.frames, 1)
}

func TestHub_ConcurrentAnnouncePublishRemove(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	const users = 8

	var wg sync.WaitGroup
	endpoints := make([]*fakeEndpoint, 64)
	for i := range endpoints {
		endpoints[i] = newFakeEndpoint(1024)
	}

	for i, ep := range endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := "u" + strconv.Itoa(i%users)
			hub.Announce(ep, userID)
			time.Sleep(time.Millisecond)
			hub.Remove(ep)
			ep.removed.Store(true)
		}()
	}

	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				hub.Publish("u"+strconv.Itoa(i%users), []byte("x"))
			}
		}()
	}
	wg.Wait()

	for i := range users {
		assert.Equal(t, 0, hub.Connections("u"+strconv.Itoa(i)))
	}
	for _, ep := range endpoints {
		assert.Zero(t, ep.lateFrames.Load())
	}
}

func TestNotifyFrame(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	frame, err := NotifyFrame("", json.RawMessage(`{"msg":"hi"}`), at)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notify","payload":{"msg":"hi"},"ts":1700000000000}`, string(frame))

	frame, err = NotifyFrame("task.created", nil, at)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notify","event":"task.created","payload":null,"ts":1700000000000}`, string(frame))
}

func TestErrorFrame(t *testing.T) {
	assert.JSONEq(t,
		`{"type":"error","payload":{"code":"FORBIDDEN","message":"no"}}`,
		string(ErrorFrame(CodeForbidden, "no")),
	)
}

func TestHubNotifier_NotifyUser(t *testing.T) {
	hub := NewHub(newDiscardLogger())
	userID := uuid.New()
	ep, eavesdropper := newBoundEndpoint(1, userID.String()), newFakeEndpoint(1)
	hub.Announce(ep, userID.String())
	hub.Announce(eavesdropper, userID.String())

	notifier := &HubNotifier{hub: hub, logger: newDiscardLogger(), now: func() time.Time { return time.UnixMilli(42) }}
	notifier.NotifyUser(userID, "task.deleted", map[string]string{"id": "t1"})

	require.Len(t, ep.frames, 1)
	assert.JSONEq(t,
		`{"type":"notify","event":"task.deleted","payload":{"id":"t1"},"ts":42}`,
		string(<-ep.frames),
	)
	assert.Empty(t, eavesdropper.frames)

	// unmarshalable data is logged and dropped
	notifier.NotifyUser(userID, "task.deleted", make(chan int))
	assert.Empty(t, ep.frames)
}
