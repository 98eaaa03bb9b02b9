package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdb/core/pkg/types"
)

type stubReceiver struct {
	heartbeatReply types.HeartbeatReply
	electionReply  types.ElectionReply
}

func (s stubReceiver) Heartbeat(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatReply, error) {
	return s.heartbeatReply, nil
}

func (s stubReceiver) StartElection(ctx context.Context, req types.ElectionRequest) (types.ElectionReply, error) {
	return s.electionReply, nil
}

func TestFakeSendHeartbeatDeliversToRegisteredPeer(t *testing.T) {
	fake := NewFake()
	peer := types.Node{Host: "127.0.0.1", Port: 9001}
	fake.Register(peer.Addr(), stubReceiver{heartbeatReply: types.HeartbeatReply{Term: 3, Success: true}})

	done := make(chan types.HeartbeatReply, 1)
	fake.SendHeartbeat(context.Background(), peer, types.HeartbeatRequest{Term: 3}, func(reply types.HeartbeatReply, err error) {
		require.NoError(t, err)
		done <- reply
	})

	select {
	case reply := <-done:
		assert.Equal(t, int64(3), reply.Term)
		assert.True(t, reply.Success)
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestFakeUnregisteredPeerReportsUnreachable(t *testing.T) {
	fake := NewFake()
	peer := types.Node{Host: "10.0.0.1", Port: 9001}

	done := make(chan error, 1)
	fake.SendHeartbeat(context.Background(), peer, types.HeartbeatRequest{}, func(_ types.HeartbeatReply, err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrUnreachable)
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestFakeSetUnreachableOverridesRegisteredPeer(t *testing.T) {
	fake := NewFake()
	peer := types.Node{Host: "127.0.0.1", Port: 9002}
	fake.Register(peer.Addr(), stubReceiver{})
	fake.SetUnreachable(peer.Addr(), true)

	done := make(chan error, 1)
	fake.StartElection(context.Background(), peer, types.ElectionRequest{}, func(_ types.ElectionReply, err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrUnreachable)
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	var codec jsonCodec
	original := types.ElectionRequest{Term: 7, LastLogTerm: 6, LastLogIndex: 42}

	data, err := codec.Marshal(original)
	require.NoError(t, err)

	var decoded types.ElectionRequest
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
	assert.Equal(t, "json", codec.Name())
}
