// Package history persists the notification history as a single JSON document
// that is rewritten in full after every change.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

const (
	appName      = "notifyd"
	fileName     = "notifications.json"
	imageDirName = "images"
)

// Action is a persisted notification action.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Record is the persisted form of a notification.
type Record struct {
	ID      uint32    `json:"id"`
	AppName string    `json:"app_name"`
	Icon    string    `json:"icon,omitempty"`
	Summary string    `json:"summary"`
	Body    string    `json:"body"`
	Actions []Action  `json:"actions"`
	Urgency uint8     `json:"urgency"`
	Timeout int32     `json:"timeout"`
	Time    time.Time `json:"time"`
}

// Document is the full content of the history file.
type Document struct {
	// ID is the last notification id handed out.
	ID            uint32   `json:"id"`
	Notifications []Record `json:"notifications"`
}

// Store reads and writes the history file.
type Store struct {
	path     string
	imageDir string
	logger   *zap.Logger
}

// Open prepares a store backed by path. The parent directory of path and
// imageDir are created if missing.
func Open(path, imageDir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	if imageDir != "" {
		if err := os.MkdirAll(imageDir, 0o755); err != nil {
			return nil, fmt.Errorf("create image directory: %w", err)
		}
	}
	return &Store{path: path, imageDir: imageDir, logger: logger}, nil
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// ImageDir returns the directory holding decoded notification images.
func (s *Store) ImageDir() string {
	return s.imageDir
}

// Load reads the history document. A missing file yields an empty document.
// An unreadable or malformed file is replaced by an empty document and a
// warning is logged; Load never fails.
func (s *Store) Load() Document {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument()
	}
	if err == nil {
		var doc Document
		if err = json.Unmarshal(data, &doc); err == nil {
			return normalize(doc)
		}
	}

	s.logger.Warn("notification history file is corrupted, cleaning",
		zap.String("path", s.path), zap.Error(err))
	empty := emptyDocument()
	if err := s.Save(empty); err != nil {
		s.logger.Error("reset notification history", zap.String("path", s.path), zap.Error(err))
	}
	return empty
}

// Save replaces the history file with doc.
func (s *Store) Save(doc Document) error {
	if doc.Notifications == nil {
		doc.Notifications = []Record{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	// Write next to the target and rename so readers never see a torn file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+fileName+".*")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func emptyDocument() Document {
	return Document{Notifications: []Record{}}
}

// normalize keeps the id counter at or above every persisted id.
func normalize(doc Document) Document {
	if doc.Notifications == nil {
		doc.Notifications = []Record{}
	}
	for _, r := range doc.Notifications {
		if r.ID > doc.ID {
			doc.ID = r.ID
		}
	}
	return doc
}

// DefaultPath returns the history file location under the XDG cache directory.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, appName, fileName)
}

// DefaultImageDir returns the image directory under the XDG cache directory.
func DefaultImageDir() string {
	return filepath.Join(xdg.CacheHome, appName, imageDirName)
}
