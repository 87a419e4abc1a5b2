// Package store is the on-disk dive archive. Dives are filed per
// device serial number and keyed by their fingerprint bytes; the store
// also remembers the newest fingerprint per device, which is what
// makes repeated downloads incremental.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store manages the dive archive rooted at one directory.
type Store struct {
	baseDir string
}

// Index contains quick lookup information for one device's dives.
type Index struct {
	Fingerprint string       `json:"fingerprint,omitempty"` // newest dive, hex
	Dives       []IndexEntry `json:"dives"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IndexEntry contains summary info for quick listing.
type IndexEntry struct {
	Fingerprint  string    `json:"fingerprint"` // hex
	Size         int       `json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// DefaultPath returns the default store path (~/.dctool/store).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dctool", "store"), nil
}

// Open opens or creates a store at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &Store{baseDir: path}, nil
}

// OpenDefault opens the store at the default path.
func OpenDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

func (s *Store) deviceDir(serial uint32) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%08d", serial))
}

func (s *Store) indexPath(serial uint32) string {
	return filepath.Join(s.deviceDir(serial), "index.json")
}

func (s *Store) loadIndex(serial uint32) (*Index, error) {
	data, err := os.ReadFile(s.indexPath(serial))
	if os.IsNotExist(err) {
		return &Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return idx, nil
}

func (s *Store) saveIndex(serial uint32, idx *Index) error {
	idx.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(serial), data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Fingerprint returns the stored sync marker for the device, or nil if
// no dive has been archived yet.
func (s *Store) Fingerprint(serial uint32) ([]byte, error) {
	idx, err := s.loadIndex(serial)
	if err != nil {
		return nil, err
	}
	if idx.Fingerprint == "" {
		return nil, nil
	}
	fp, err := hex.DecodeString(idx.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("corrupt fingerprint in index: %w", err)
	}
	return fp, nil
}

// SetFingerprint records the sync marker for the device.
func (s *Store) SetFingerprint(serial uint32, fp []byte) error {
	if err := os.MkdirAll(s.deviceDir(serial), 0755); err != nil {
		return fmt.Errorf("failed to create device dir: %w", err)
	}
	idx, err := s.loadIndex(serial)
	if err != nil {
		return err
	}
	idx.Fingerprint = hex.EncodeToString(fp)
	return s.saveIndex(serial, idx)
}

// SaveDive archives one dive payload under its fingerprint bytes.
// Returns the fingerprint hex name and whether the dive was new.
func (s *Store) SaveDive(serial uint32, fingerprint, payload []byte) (string, bool, error) {
	name := hex.EncodeToString(fingerprint)
	if err := os.MkdirAll(s.deviceDir(serial), 0755); err != nil {
		return "", false, fmt.Errorf("failed to create device dir: %w", err)
	}

	idx, err := s.loadIndex(serial)
	if err != nil {
		return "", false, err
	}
	for _, e := range idx.Dives {
		if e.Fingerprint == name {
			return name, false, nil
		}
	}

	divePath := filepath.Join(s.deviceDir(serial), name+".bin")
	if err := os.WriteFile(divePath, payload, 0644); err != nil {
		return "", false, fmt.Errorf("failed to write dive: %w", err)
	}

	idx.Dives = append(idx.Dives, IndexEntry{
		Fingerprint:  name,
		Size:         len(payload),
		DownloadedAt: time.Now(),
	})
	if err := s.saveIndex(serial, idx); err != nil {
		return "", false, err
	}
	return name, true, nil
}

// List returns the archived dives for the device, newest download
// first.
func (s *Store) List(serial uint32) ([]IndexEntry, error) {
	idx, err := s.loadIndex(serial)
	if err != nil {
		return nil, err
	}
	entries := make([]IndexEntry, len(idx.Dives))
	copy(entries, idx.Dives)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DownloadedAt.After(entries[j].DownloadedAt)
	})
	return entries, nil
}

// Devices returns the serial numbers with archived dives.
func (s *Store) Devices() ([]uint32, error) {
	dirs, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store: %w", err)
	}
	var serials []uint32
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		var serial uint32
		if _, err := fmt.Sscanf(d.Name(), "%d", &serial); err == nil {
			serials = append(serials, serial)
		}
	}
	return serials, nil
}

// Read returns the payload of an archived dive by its fingerprint hex
// name.
func (s *Store) Read(serial uint32, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.deviceDir(serial), name+".bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to read dive: %w", err)
	}
	return data, nil
}

// Export copies an archived dive to outPath.
func (s *Store) Export(serial uint32, name, outPath string) error {
	data, err := s.Read(serial, name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}
