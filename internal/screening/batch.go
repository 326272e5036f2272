package screening

import (
	"sync"
	"time"
)

// Batch is the working set of resumes for one screening run. Every update
// addresses a single file by id.
type Batch struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	mu      sync.Mutex
	files   []File
	running bool
}

// BatchView is the JSON shape of a batch.
type BatchView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Running   bool      `json:"running"`
	Files     []File    `json:"files"`
}

// Files returns a copy of the files in upload order.
func (b *Batch) Files() []File {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]File, len(b.files))
	copy(out, b.files)
	return out
}

func (b *Batch) View() BatchView {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()
	return BatchView{ID: b.ID, CreatedAt: b.CreatedAt, Running: running, Files: b.Files()}
}

// Count returns the number of files held.
func (b *Batch) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// update applies fn to the file with id. It reports false when the file
// was removed in the meantime.
func (b *Batch) update(id string, fn func(*File)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.files {
		if b.files[i].ID == id {
			fn(&b.files[i])
			return true
		}
	}
	return false
}

func (b *Batch) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.files {
		if b.files[i].ID == id {
			b.files = append(b.files[:i], b.files[i+1:]...)
			return true
		}
	}
	return false
}

// begin claims the batch for one analysis run.
func (b *Batch) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	b.running = true
	return true
}

func (b *Batch) end() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// markAnalyzing moves every file that has not succeeded into the analyzing
// state and returns snapshots of them.
func (b *Batch) markAnalyzing() []File {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []File
	for i := range b.files {
		if b.files[i].Status == StatusSuccess {
			continue
		}
		b.files[i].Status = StatusAnalyzing
		b.files[i].Error = ""
		b.files[i].Result = nil
		out = append(out, b.files[i])
	}
	return out
}
