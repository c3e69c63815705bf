// Package dedupe rejects analysis submissions identical to one already in flight.
package dedupe

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

const (
	defaultMaxSize = 10000
	jobKeyBytes    = 8
)

// Deduper records submission fingerprints.
type Deduper interface {
	// SeenAndRecord reports whether fp was already recorded and records it if not.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Unrecord forgets fp so the same submission can be made again, e.g. after
	// the queue rejected it or the analysis finished.
	Unrecord(ctx context.Context, fp string)

	Size() int64
}

// Fingerprint identifies a submission by session and normalized texts.
func Fingerprint(sessionID, cvText, jobText string) string {
	h := sha256.New()
	for _, part := range []string{sessionID, normalize(cvText), normalize(jobText)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// JobKey identifies a job posting by its normalized text, so analyses of the
// same posting share one shortlist.
func JobKey(jobText string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(normalize(jobText))))
	return hex.EncodeToString(sum[:jobKeyBytes])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// inMemoryDeduper is a bounded set. When full, the oldest fingerprint is evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int        // <= 0 means unbounded
}

// NewInMemoryDeduper creates a deduper holding at most 10000 fingerprints by default.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[fp]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Back()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[fp] = d.order.PushFront(fp)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, fp string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[fp]; ok {
		d.order.Remove(el)
		delete(d.seen, fp)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
