package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shossk/cocoro-sdk/internal/property"
)

func testSnapshot(id int64) *Snapshot {
	return &Snapshot{
		DeviceID:    id,
		Timestamp:   time.Date(2024, 7, 1, 12, 30, 0, 123, time.UTC),
		Description: "before power on",
		Statuses: []property.Status{
			property.NewSingleStatus("80", "31"),
			{Code: "BB", Kind: property.KindRange, Value: "024"},
			property.NewBinaryStatus("F1", "0100a003"),
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	snap := testSnapshot(42)

	data, err := Encode(snap)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snap.DeviceID, got.DeviceID)
	assert.True(t, snap.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, snap.Description, got.Description)
	assert.Equal(t, snap.Statuses, got.Statuses, "values are stored verbatim")
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := Encode(testSnapshot(1))
	require.NoError(t, err)
	b, err := Encode(testSnapshot(1))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	_, err = store.Load(42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(testSnapshot(42)))
	require.NoError(t, store.Save(testSnapshot(7)))

	_, err = os.Stat(filepath.Join(dir, "42.cbor"))
	require.NoError(t, err)

	got, err := store.Load(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.DeviceID)
	assert.Len(t, got.Statuses, 3)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids)

	newer := testSnapshot(42)
	newer.Description = "before mode change"
	require.NoError(t, store.Save(newer))
	got, err = store.Load(42)
	require.NoError(t, err)
	assert.Equal(t, "before mode change", got.Description)

	require.NoError(t, store.Delete(42))
	require.NoError(t, store.Delete(42))
	_, err = store.Load(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore_EmptyDir(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
