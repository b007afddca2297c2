package records

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type failingBackend struct {
	*MemoryBackend
	putErr error
}

func (f *failingBackend) Put(ctx context.Context, key string, value []byte) error {
	return f.putErr
}

func TestLog_AppendInsertsAtHeadAndPersists(t *testing.T) {
	backend := NewMemoryBackend()
	l := NewLog(backend, testLogger())
	require.NoError(t, l.Load())
	assert.Equal(t, 0, l.Len())

	first := NewRecord(2*time.Minute, 30*time.Minute, morning, "Light music")
	second := NewRecord(3*time.Minute, 30*time.Minute, morning.Add(time.Hour), "City morning")
	require.NoError(t, l.Append(first))
	require.NoError(t, l.Append(second))

	snap := l.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, second.ID, snap[0].ID)
	assert.Equal(t, first.ID, snap[1].ID)

	reloaded := NewLog(backend, testLogger())
	require.NoError(t, reloaded.Load())
	if diff := cmp.Diff(snap, reloaded.Snapshot()); diff != "" {
		t.Errorf("reloaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestLog_SnapshotIsACopy(t *testing.T) {
	l := NewLog(NewMemoryBackend(), testLogger())
	require.NoError(t, l.Append(NewRecord(2*time.Minute, time.Hour, morning, "Focus")))

	snap := l.Snapshot()
	snap[0].SoundscapeLabel = "changed"
	assert.Equal(t, "Focus", l.Snapshot()[0].SoundscapeLabel)
}

func TestLog_ClearPersistsEmptyList(t *testing.T) {
	backend := NewMemoryBackend()
	l := NewLog(backend, testLogger())
	require.NoError(t, l.Append(NewRecord(2*time.Minute, time.Hour, morning, "Focus")))
	require.NoError(t, l.Clear())

	assert.Equal(t, 0, l.Len())
	raw, err := backend.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestLog_CorruptBlobLoadsEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), StorageKey, []byte(`[{"id": 1`)))

	var buf bytes.Buffer
	l := NewLog(backend, log.New(&buf, "", 0))

	err := l.Load()
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, 0, l.Len())
	assert.Contains(t, buf.String(), "starting empty")

	// The next write replaces the unreadable blob
	require.NoError(t, l.Append(NewRecord(2*time.Minute, time.Hour, morning, "Focus")))
	reloaded := NewLog(backend, testLogger())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.Len())
}

func TestLog_PersistFailureKeepsRecordInMemory(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend(), putErr: errors.New("disk full")}
	l := NewLog(backend, testLogger())

	err := l.Append(NewRecord(2*time.Minute, time.Hour, morning, "Focus"))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, l.Len())
}

func TestLog_ListenSeesEveryChange(t *testing.T) {
	l := NewLog(NewMemoryBackend(), testLogger())

	var seen [][]Record
	unregister := l.Listen(func(recs []Record) { seen = append(seen, recs) })

	require.NoError(t, l.Load())
	r := NewRecord(2*time.Minute, 30*time.Minute, morning, "Light music")
	require.NoError(t, l.Append(r))
	require.NoError(t, l.Clear())
	unregister()
	require.NoError(t, l.Append(r))

	require.Len(t, seen, 3)
	assert.Empty(t, seen[0])
	assert.Equal(t, []Record{r}, seen[1])
	assert.Empty(t, seen[2])
}
