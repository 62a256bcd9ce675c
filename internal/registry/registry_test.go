package registry

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemolymph/bloodless-server/internal/wire"
)

type fakeRoom struct{ id wire.RoomID }

func TestCreateLookupDelete(t *testing.T) {
	r := New[fakeRoom]()
	room := &fakeRoom{id: "table-1"}

	require.NoError(t, r.Create("table-1", room))

	got, ok := r.Lookup("table-1")
	require.True(t, ok)
	require.Same(t, room, got)

	err := r.Create("table-1", &fakeRoom{id: "table-1"})
	require.ErrorAs(t, err, &ErrAlreadyExists{})

	r.Delete("table-1")
	_, ok = r.Lookup("table-1")
	require.False(t, ok)
}

func TestLookupMissing(t *testing.T) {
	r := New[fakeRoom]()
	_, ok := r.Lookup("ghost")
	require.False(t, ok)
}

func TestWeakEntryClearsOnceUnreferenced(t *testing.T) {
	r := New[fakeRoom]()
	func() {
		room := &fakeRoom{id: "table-1"}
		require.NoError(t, r.Create("table-1", room))
	}()

	runtime.GC()
	runtime.GC()

	_, ok := r.Lookup("table-1")
	require.False(t, ok)
}
