package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"

	"github.com/jebin2/neko-launcher/internal/model"
)

// Default cursor starting points, used on first use of a fresh state file.
const (
	DefaultServerPort uint16 = 8081
	DefaultDebugPort  uint16 = 9224
	DefaultWebRTCPort uint16 = 52000
)

// Document is the on-disk State document: one per host.
type Document struct {
	NextServerPort uint16                         `json:"next_server_port"`
	NextDebugPort  uint16                         `json:"next_debug_port"`
	NextWebRTCPort uint16                         `json:"next_webrtc_port"`
	Allocations    map[string]model.Allocation    `json:"allocations"`

	// Extra preserves any top-level JSON keys this struct doesn't model, so
	// StateStore.Write never drops forward-compatible fields written by a
	// newer version of this tool.
	Extra map[string]json.RawMessage `json:"-"`
}

// defaultDocument returns a fresh Document at the default cursors with an
// empty allocation map. Called by deep copy everywhere a default is needed,
// so callers mutating the result never pollute a shared default.
func defaultDocument() *Document {
	return &Document{
		NextServerPort: DefaultServerPort,
		NextDebugPort:  DefaultDebugPort,
		NextWebRTCPort: DefaultWebRTCPort,
		Allocations:    make(map[string]model.Allocation),
		Extra:          make(map[string]json.RawMessage),
	}
}

// IsEmpty reports whether the allocation map is empty — the condition under
// which cursors must be reset to their defaults (I4).
func (d *Document) IsEmpty() bool {
	return len(d.Allocations) == 0
}

// ResetCursors resets the three search cursors to their defaults. Called
// whenever the allocation map becomes empty, per I4/P3.
func (d *Document) ResetCursors() {
	d.NextServerPort = DefaultServerPort
	d.NextDebugPort = DefaultDebugPort
	d.NextWebRTCPort = DefaultWebRTCPort
}

// Store persists and retrieves the State document at Path. Store has no
// locking of its own — callers (the Allocator) hold FileLock and the
// intra-process mutex around a full read-modify-write cycle.
type Store struct {
	Path string
}

// New creates a Store rooted at path. The path is injected rather than
// baked into the package so tests can point it at a temp directory.
func New(path string) *Store {
	return &Store{Path: path}
}

// Read loads the Document from disk. A missing or malformed file is never
// an error — it always yields a fresh default Document, so callers never
// need a separate bootstrap path for "state file doesn't exist yet".
func (s *Store) Read() *Document {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return defaultDocument()
	}
	return decode(data)
}

// decode parses raw JSON into a Document, preserving unknown top-level keys
// in Extra. Malformed JSON yields a fresh default rather than an error.
func decode(data []byte) *Document {
	if len(data) == 0 {
		return defaultDocument()
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return defaultDocument()
	}

	doc := defaultDocument()

	known := map[string]*uint16{
		"next_server_port": &doc.NextServerPort,
		"next_debug_port":  &doc.NextDebugPort,
		"next_webrtc_port": &doc.NextWebRTCPort,
	}
	for key, target := range known {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, target); err != nil {
				return defaultDocument()
			}
			delete(raw, key)
		}
	}

	if v, ok := raw["allocations"]; ok {
		allocs := make(map[string]model.Allocation)
		if err := json.Unmarshal(v, &allocs); err != nil {
			return defaultDocument()
		}
		doc.Allocations = allocs
		delete(raw, "allocations")
	}

	doc.Extra = raw
	return doc
}

// Write persists doc atomically: the new content either fully replaces the
// old file or the write never happens, so a concurrent reader or a crash
// mid-write never observes a truncated file.
func (s *Store) Write(doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.Path, err)
	}

	out := map[string]json.RawMessage{}
	for k, v := range doc.Extra {
		out[k] = v
	}

	serverPort, err := json.Marshal(doc.NextServerPort)
	if err != nil {
		return fmt.Errorf("failed to marshal next_server_port: %w", err)
	}
	debugPort, err := json.Marshal(doc.NextDebugPort)
	if err != nil {
		return fmt.Errorf("failed to marshal next_debug_port: %w", err)
	}
	webrtcPort, err := json.Marshal(doc.NextWebRTCPort)
	if err != nil {
		return fmt.Errorf("failed to marshal next_webrtc_port: %w", err)
	}
	allocations := doc.Allocations
	if allocations == nil {
		allocations = make(map[string]model.Allocation)
	}
	allocJSON, err := json.Marshal(allocations)
	if err != nil {
		return fmt.Errorf("failed to marshal allocations: %w", err)
	}

	out["next_server_port"] = serverPort
	out["next_debug_port"] = debugPort
	out["next_webrtc_port"] = webrtcPort
	out["allocations"] = allocJSON

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state document: %w", err)
	}

	// atomicwriter writes to a sibling temp file and renames it over Path,
	// so a reader racing this write sees either the old or the new bytes,
	// never a partial file.
	if err := atomicwriter.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to persist state to %s: %w", s.Path, err)
	}

	return nil
}
