package room

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hemolymph/bloodless-server/internal/metrics"
	"github.com/hemolymph/bloodless-server/internal/registry"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHarness(t *testing.T) (*Room, *metrics.Metrics, context.Context, context.CancelFunc) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	reg := registry.New[Room]()
	r := New("table-1", 16)
	require.NoError(t, reg.Create("table-1", r))

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx, reg, m)
	return r, m, ctx, cancel
}

func drainOne(t *testing.T, ch <-chan OutboundRecord) OutboundRecord {
	t.Helper()
	select {
	case rec, ok := <-ch:
		require.True(t, ok, "channel closed before a record arrived")
		return rec
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a broadcast record")
		return OutboundRecord{}
	}
}

func TestRoomAdmitAndPlayThroughToDesolation(t *testing.T) {
	r, _, ctx, cancel := newHarness(t)
	defer cancel()

	homeCh, _, ok := r.Admit(ctx, "home-1")
	require.True(t, ok)
	awayCh, _, ok := r.Admit(ctx, "away-1")
	require.True(t, ok)

	r.Send("home-1", wire.PlayAsMsg{})
	rec := drainOne(t, homeCh)
	require.Nil(t, rec.Env.Err)

	r.Send("away-1", wire.PlayAsMsg{})
	drainOne(t, awayCh)

	r.Send("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf", "Bat"}})
	drainOne(t, homeCh)
	drainOne(t, awayCh)

	r.Send("home-1", wire.LeaveRoomMsg{})
	drainOne(t, awayCh)

	r.Send("away-1", wire.LeaveRoomMsg{})

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room did not tear down after last participant left")
	}

	_, _, ok = r.Admit(context.Background(), "late-1")
	require.False(t, ok, "a torn-down room must refuse new admits")
}

func TestRoomTeardownClosesOutboundChannels(t *testing.T) {
	r, _, ctx, cancel := newHarness(t)
	defer cancel()

	ch, _, ok := r.Admit(ctx, "spectator-1")
	require.True(t, ok)

	r.Send("spectator-1", wire.LeaveRoomMsg{})

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room did not tear down")
	}

	_, stillOpen := <-ch
	require.False(t, stillOpen, "outbound channel must be closed on teardown")
}

// TestUpdateAllProjectsAPerspectivePerRecipient guards against a
// broadcast that reuses one shared view: after a Draw, the away seat's
// own copy of the state must show its own hand, never the home seat's.
func TestUpdateAllProjectsAPerspectivePerRecipient(t *testing.T) {
	r, _, ctx, cancel := newHarness(t)
	defer cancel()

	homeCh, _, ok := r.Admit(ctx, "home-1")
	require.True(t, ok)
	awayCh, _, ok := r.Admit(ctx, "away-1")
	require.True(t, ok)

	// PlayAs replies only to its author.
	r.Send("home-1", wire.PlayAsMsg{})
	drainOne(t, homeCh)
	r.Send("away-1", wire.PlayAsMsg{})
	drainOne(t, awayCh)

	r.Send("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf", "Bat"}})
	drainOne(t, homeCh)
	drainOne(t, awayCh)

	r.Send("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	homeRec := drainOne(t, homeCh)
	awayRec := drainOne(t, awayCh)

	require.Len(t, homeRec.Env.Ok.(wire.UpdateStateMsg).State.Home.Hand, 1,
		"home's own broadcast copy must show its own hand")
	require.Empty(t, awayRec.Env.Ok.(wire.UpdateStateMsg).State.Home.Hand,
		"away's broadcast copy must not reveal home's hand contents")
}
