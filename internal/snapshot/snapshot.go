package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/shossk/cocoro-sdk/internal/property"
)

const fileExt = ".cbor"

// ErrNotFound is returned by Load when no snapshot exists for a device
var ErrNotFound = errors.New("snapshot not found")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Snapshot is a device's status list captured before a submission
type Snapshot struct {
	DeviceID    int64
	Timestamp   time.Time
	Description string
	Statuses    []property.Status
}

type record struct {
	DeviceID    int64     `cbor:"1,keyasint"`
	Timestamp   time.Time `cbor:"2,keyasint"`
	Description string    `cbor:"3,keyasint,omitempty"`
	Statuses    []entry   `cbor:"4,keyasint"`
}

type entry struct {
	Code  string `cbor:"1,keyasint"`
	Kind  string `cbor:"2,keyasint"`
	Value string `cbor:"3,keyasint"`
}

// Encode serializes a snapshot to CBOR
func Encode(snap *Snapshot) ([]byte, error) {
	rec := record{
		DeviceID:    snap.DeviceID,
		Timestamp:   snap.Timestamp,
		Description: snap.Description,
		Statuses:    make([]entry, len(snap.Statuses)),
	}
	for i, s := range snap.Statuses {
		rec.Statuses[i] = entry{Code: string(s.Code), Kind: s.Kind.String(), Value: s.Value}
	}
	return encMode.Marshal(rec)
}

// Decode parses a CBOR snapshot
func Decode(data []byte) (*Snapshot, error) {
	var rec record
	if err := decMode.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	snap := &Snapshot{
		DeviceID:    rec.DeviceID,
		Timestamp:   rec.Timestamp,
		Description: rec.Description,
		Statuses:    make([]property.Status, len(rec.Statuses)),
	}
	for i, e := range rec.Statuses {
		kind, err := property.ParseValueKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("snapshot entry %s: %w", e.Code, err)
		}
		s := property.Status{Code: property.StatusCode(e.Code), Kind: kind, Value: e.Value}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot entry %s: %w", e.Code, err)
		}
		snap.Statuses[i] = s
	}
	return snap, nil
}

// Store keeps one snapshot file per device in a directory
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the directory if needed and returns a store rooted there
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

// Save writes snap, replacing any earlier snapshot for the same device
func (s *Store) Save(snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(snap.DeviceID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot for a device
func (s *Store) Load(deviceID int64) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(deviceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(data)
}

// Delete removes the stored snapshot for a device. Deleting a missing
// snapshot is not an error.
func (s *Store) Delete(deviceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(deviceID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List returns the IDs of every device with a stored snapshot, sorted
func (s *Store) List() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var ids []int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, fileExt), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) path(deviceID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(deviceID, 10)+fileExt)
}
