// Package snapshot writes zstd-compressed world snapshots: a JSON header line
// followed by the JSON body.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"prohibition/internal/event"
	"prohibition/internal/world"
)

// Version is the current snapshot format.
const Version = 1

const ext = ".snap.zst"

type Header struct {
	Version int       `json:"version"`
	Tick    uint64    `json:"tick"`
	Events  int       `json:"events"`
	SavedAt time.Time `json:"saved_at"`
}

type SnapshotV1 struct {
	Header Header        `json:"header"`
	World  *world.State  `json:"world"`
	Events []event.Entry `json:"events,omitempty"`
}

// New builds a snapshot of st and its event log.
func New(st *world.State, events []event.Entry) SnapshotV1 {
	return SnapshotV1{
		Header: Header{Version: Version, Tick: st.Tick, Events: len(events), SavedAt: time.Now().UTC()},
		World:  st,
		Events: events,
	}
}

// Write stores snap at path, replacing any existing file atomically.
func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if err := encode(f, snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("json encode header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads a snapshot written by Write.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The body repeats the header; the line only exists for cheap listing.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if snap.World == nil {
		return snap, fmt.Errorf("snapshot %s has no world", path)
	}
	return snap, nil
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("json decode header: %w", err)
	}
	return h, nil
}

// PathFor names the snapshot file for tick inside dir.
func PathFor(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("world_%012d%s", tick, ext))
}

// Latest returns the snapshot in dir with the highest tick, or "" when there is none.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	type candidate struct {
		tick uint64
		path string
	}
	var found []candidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "world_") || !strings.HasSuffix(name, ext) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimPrefix(name, "world_"), ext), 10, 64)
		if err != nil {
			continue
		}
		found = append(found, candidate{tick, filepath.Join(dir, name)})
	}
	if len(found) == 0 {
		return "", nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].tick > found[j].tick })
	return found[0].path, nil
}
