package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	MaxImages = 5
	MaxVideos = 5

	MaxImageBytes = 3 << 20  // 3 MB
	MaxVideoBytes = 10 << 20 // 10 MB
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	ErrTooLarge        = errors.New("media: file exceeds size limit")
	ErrUnsupportedType = errors.New("media: unsupported content type")
	ErrSlotRange       = errors.New("media: slot out of range")
	ErrKind            = errors.New("media: unknown media kind")
)

// Attachment is the metadata kept for one occupied slot. Path points
// into the spool; Preview carries the inline data URL for images and is
// empty for videos, whose preview is streamed from the spool file.
type Attachment struct {
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Path        string `json:"path"`
	Preview     string `json:"preview,omitempty"`
}

// LimitFor returns the byte cap for a media kind.
func LimitFor(kind Kind) (int64, error) {
	switch kind {
	case KindImage:
		return MaxImageBytes, nil
	case KindVideo:
		return MaxVideoBytes, nil
	}
	return 0, ErrKind
}

// SlotsFor returns the slot count for a media kind.
func SlotsFor(kind Kind) (int, error) {
	switch kind {
	case KindImage:
		return MaxImages, nil
	case KindVideo:
		return MaxVideos, nil
	}
	return 0, ErrKind
}

// Spool holds accepted flow media on local disk under one directory per
// draft, so a draft teardown releases everything in one sweep.
type Spool struct {
	root string
}

func NewSpool(root string) (*Spool, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{root: root}, nil
}

func (s *Spool) draftDir(draftID string) string {
	return filepath.Join(s.root, draftID)
}

// Store reads one file into the slot, enforcing the size cap and the
// content-type family for the kind. A rejected file leaves no trace on
// disk. Accepted images additionally get an inline data-URL preview.
func (s *Spool) Store(draftID string, kind Kind, slot int, fileName string, r io.Reader) (*Attachment, error) {
	limit, err := LimitFor(kind)
	if err != nil {
		return nil, err
	}
	slots, _ := SlotsFor(kind)
	if slot < 0 || slot >= slots {
		return nil, ErrSlotRange
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, string(kind)+"/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	dir := s.draftDir(draftID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%d", kind, slot))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write spool file: %w", err)
	}

	att := &Attachment{
		FileName:    filepath.Base(fileName),
		Size:        int64(len(data)),
		ContentType: contentType,
		Path:        path,
	}
	if kind == KindImage {
		att.Preview = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return att, nil
}

// Remove releases one attachment's spool file. Missing files are fine;
// release must be idempotent.
func (s *Spool) Remove(att *Attachment) error {
	if att == nil || att.Path == "" {
		return nil
	}
	if err := os.Remove(att.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove spool file: %w", err)
	}
	return nil
}

// Open returns the spooled file for streaming. The caller closes it.
func (s *Spool) Open(att *Attachment) (*os.File, error) {
	return os.Open(att.Path)
}

// ReleaseDraft drops every file a draft ever spooled.
func (s *Spool) ReleaseDraft(draftID string) error {
	return os.RemoveAll(s.draftDir(draftID))
}

// Sweep deletes spool directories whose draft is no longer live. Returns
// how many directories were released.
func (s *Spool) Sweep(live func(draftID string) bool) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("read spool dir: %w", err)
	}
	released := 0
	for _, e := range entries {
		if !e.IsDir() || live(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return released, fmt.Errorf("sweep %s: %w", e.Name(), err)
		}
		released++
	}
	return released, nil
}
