package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const captureFilePattern = "capture_%d_%d.json"

// CaptureFile describes one raw payload capture on disk.
type CaptureFile struct {
	Path   string
	Seq    uint64
	TsUnix int64
}

// Capture is a loaded raw payload.
type Capture struct {
	CaptureFile
	Body []byte
}

// CaptureManager writes raw response bodies to disk so decoder changes can be
// checked against real payloads later.
type CaptureManager struct {
	dir string

	mu      sync.Mutex
	lastSeq uint64
	seeded  bool
}

// NewCaptureManager creates a capture manager rooted at dir.
func NewCaptureManager(dir string) *CaptureManager {
	return &CaptureManager{dir: dir}
}

// Dir returns the capture directory.
func (cm *CaptureManager) Dir() string {
	return cm.dir
}

// Save writes body as the next capture. Sequence numbers continue from the
// highest capture already in the directory.
func (cm *CaptureManager) Save(body []byte, at time.Time) (CaptureFile, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := os.MkdirAll(cm.dir, 0755); err != nil {
		return CaptureFile{}, fmt.Errorf("failed to create capture dir: %w", err)
	}

	if !cm.seeded {
		files, err := cm.List()
		if err != nil {
			return CaptureFile{}, err
		}
		if n := len(files); n > 0 {
			cm.lastSeq = files[n-1].Seq
		}
		cm.seeded = true
	}

	cm.lastSeq++
	cf := CaptureFile{Seq: cm.lastSeq, TsUnix: at.Unix()}
	cf.Path = filepath.Join(cm.dir, fmt.Sprintf(captureFilePattern, cf.Seq, cf.TsUnix))

	// Captures hold live positions; keep them private to the user.
	if err := os.WriteFile(cf.Path, body, 0600); err != nil {
		return CaptureFile{}, fmt.Errorf("failed to write capture: %w", err)
	}

	slog.Debug("Payload captured",
		slog.Uint64("seq", cf.Seq),
		slog.String("path", cf.Path))

	return cf, nil
}

// List returns all captures sorted by sequence, oldest first.
// A missing directory yields an empty list.
func (cm *CaptureManager) List() ([]CaptureFile, error) {
	entries, err := os.ReadDir(cm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read capture dir: %w", err)
	}

	var files []CaptureFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var cf CaptureFile
		if _, err := fmt.Sscanf(entry.Name(), captureFilePattern, &cf.Seq, &cf.TsUnix); err != nil {
			continue // Not a capture file
		}
		cf.Path = filepath.Join(cm.dir, entry.Name())
		files = append(files, cf)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Seq < files[j].Seq })
	return files, nil
}

// LoadLatest loads the capture with the highest sequence number.
// Returns nil if no capture exists.
func (cm *CaptureManager) LoadLatest() (*Capture, error) {
	files, err := cm.List()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	latest := files[len(files)-1]
	body, err := os.ReadFile(latest.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return &Capture{CaptureFile: latest, Body: body}, nil
}

// Cleanup removes old captures, keeping only the latest keepCount.
func (cm *CaptureManager) Cleanup(keepCount int) error {
	if keepCount < 0 {
		keepCount = 0
	}
	files, err := cm.List()
	if err != nil {
		return err
	}
	if len(files) <= keepCount {
		return nil
	}

	for _, cf := range files[:len(files)-keepCount] {
		if err := os.Remove(cf.Path); err != nil {
			slog.Warn("Failed to remove old capture", slog.String("path", cf.Path), slog.Any("error", err))
		} else {
			slog.Debug("Removed old capture", slog.String("path", cf.Path))
		}
	}
	return nil
}
