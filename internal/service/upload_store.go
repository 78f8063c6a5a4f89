package service

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Extensions accepted for chart uploads, matched case-insensitively.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// UploadStore keeps uploaded chart images on disk only long enough for the
// analyzer to read them. Removal is best-effort; SweepOlderThan catches
// leftovers from crashed requests.
type UploadStore struct {
	Dir    string
	Logger *zap.Logger
}

func NewUploadStore(dir string, logger *zap.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &UploadStore{Dir: dir, Logger: logger}, nil
}

// AllowedFile reports whether the filename carries an accepted extension.
// A missing extension is rejected.
func AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

// TempPath produces a collision-free destination inside the upload dir,
// preserving the original extension.
func (u *UploadStore) TempPath(filename string) string {
	raw := make([]byte, 8)
	_, _ = rand.Read(raw)
	name := time.Now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(raw) + strings.ToLower(filepath.Ext(filename))
	return filepath.Join(u.Dir, name)
}

// Remove deletes a stored upload. Failures are swallowed: the analysis result
// may already be committed, so cleanup must never surface to the caller.
func (u *UploadStore) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) && u.Logger != nil {
		u.Logger.Warn("upload cleanup failed", zap.String("path", path), zap.Error(err))
	}
}

// SweepOlderThan removes uploads older than maxAge and returns how many were
// deleted. Run from cron to clear files a crashed request left behind.
func (u *UploadStore) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(u.Dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(u.Dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
