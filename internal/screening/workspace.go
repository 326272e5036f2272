package screening

import (
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-screener/internal/shared/util"
)

// Workspace owns the in-memory batches of every user.
type Workspace struct {
	mu      sync.Mutex
	batches map[string]*Batch
	now     func() time.Time
}

func NewWorkspace(now func() time.Time) *Workspace {
	if now == nil {
		now = time.Now
	}
	return &Workspace{batches: make(map[string]*Batch), now: now}
}

// NewBatch opens an empty batch for owner.
func (w *Workspace) NewBatch(owner string) *Batch {
	b := &Batch{ID: uuid.NewString(), Owner: owner, CreatedAt: w.now().UTC()}
	w.mu.Lock()
	w.batches[b.ID] = b
	w.mu.Unlock()
	return b
}

// Batch returns the batch with id when owner holds it.
func (w *Workspace) Batch(id, owner string) (*Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.batches[id]
	if !ok || b.Owner != owner {
		return nil, ErrNotFound
	}
	return b, nil
}

// Drop discards a batch and the file bytes it holds.
func (w *Workspace) Drop(id, owner string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.batches[id]
	if !ok || b.Owner != owner {
		return ErrNotFound
	}
	delete(w.batches, id)
	return nil
}

// AddFiles appends the PDFs among uploads as pending files. Non-PDF names
// are returned as rejected. When the PDFs would overflow MaxFiles nothing
// is added.
func (w *Workspace) AddFiles(id, owner string, uploads []Upload) ([]File, []string, error) {
	b, err := w.Batch(id, owner)
	if err != nil {
		return nil, nil, err
	}

	var (
		accepted []File
		rejected []string
	)
	for _, u := range uploads {
		name, err := util.SanitizeFileName(u.Name)
		if err != nil || !isPDF(name, u.ContentType, u.Data) {
			rejected = append(rejected, u.Name)
			continue
		}
		accepted = append(accepted, File{
			ID:     uuid.NewString(),
			Name:   name,
			Data:   u.Data,
			Status: StatusPending,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.files)+len(accepted) > MaxFiles {
		return nil, rejected, ErrTooManyFiles
	}
	b.files = append(b.files, accepted...)
	return accepted, rejected, nil
}

// RemoveFile drops one file from a batch. A running task for it is
// discarded when it settles.
func (w *Workspace) RemoveFile(id, owner, fileID string) error {
	b, err := w.Batch(id, owner)
	if err != nil {
		return err
	}
	if !b.remove(fileID) {
		return ErrFileNotFound
	}
	return nil
}

func isPDF(name, contentType string, data []byte) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if mediaType == "application/pdf" {
		return true
	}
	if mediaType != "" && mediaType != "application/octet-stream" {
		return false
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	return http.DetectContentType(data) == "application/pdf"
}
