package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/pkg/metrics"
)

// Treap-based, in-memory Store with one treap per job key.
//
// Ordering: score DESC, then analysis ID ASC (deterministic). "less" means
// ranks earlier, so in-order traversal yields the shortlist from best to worst.

const (
	defaultMaxEntries     = 50000
	defaultMetricsRefresh = 5 * time.Second
)

// scoreScale keeps overall scores (one decimal) exact as integers.
const scoreScale = 1000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) ranks before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority derives a stable heap priority from the analysis ID.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countHigher counts nodes with a strictly higher score.
func countHigher(n *node, score scoreFP) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

func lastNode(n *node) *node {
	for n != nil && n.right != nil {
		n = n.right
	}
	return n
}

// collectTopN appends up to limit records in rank order.
func collectTopN(n *node, limit int, records map[string]model.AnalysisRecord, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.id]; ok {
			*out = append(*out, entryOf(rec))
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

func entryOf(rec model.AnalysisRecord) Entry {
	return Entry{
		AnalysisID:    rec.ID,
		CandidateName: rec.CandidateName,
		Score:         toFloat(toFixedPoint(rec.Score.OverallScore)),
		Label:         rec.Score.Label,
		CreatedAt:     rec.CreatedAt,
	}
}

// TreapStore is the in-memory Store.
type TreapStore struct {
	mu                    sync.RWMutex
	roots                 map[string]*node
	byID                  map[string]model.AnalysisRecord
	maxEntries            int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTreapStore constructs a treap store. A background goroutine reports the
// entry count until ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		roots:                 make(map[string]*node),
		byID:                  make(map[string]model.AnalysisRecord),
		maxEntries:            defaultMaxEntries,
		metricsUpdateInterval: defaultMetricsRefresh,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background goroutine.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Save implements Store.Save in O(log n) expected time, plus a scan of the
// job treaps when an eviction is needed.
func (s *TreapStore) Save(_ context.Context, rec model.AnalysisRecord) error {
	if rec.ID == "" || rec.JobKey == "" {
		return fmt.Errorf("%w: analysis id and job key are required", ErrInvalidEntry)
	}
	score := toFixedPoint(rec.Score.OverallScore)

	s.mu.Lock()
	if old, ok := s.byID[rec.ID]; ok {
		s.remove(old)
	} else if len(s.byID) >= s.maxEntries {
		s.evictLowest()
	}
	s.byID[rec.ID] = rec
	s.roots[rec.JobKey] = insert(s.roots[rec.JobKey], rec.ID, score)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateShortlistEntries(count)
	return nil
}

// remove drops rec from its treap and the index. Caller holds the lock.
func (s *TreapStore) remove(rec model.AnalysisRecord) {
	root := deleteNode(s.roots[rec.JobKey], rec.ID, toFixedPoint(rec.Score.OverallScore))
	if root == nil {
		delete(s.roots, rec.JobKey)
	} else {
		s.roots[rec.JobKey] = root
	}
	delete(s.byID, rec.ID)
}

// evictLowest removes the worst-ranked analysis across all jobs. Caller holds the lock.
func (s *TreapStore) evictLowest() {
	var worst *node
	for _, root := range s.roots {
		last := lastNode(root)
		if last == nil {
			continue
		}
		if worst == nil || less(worst.score, worst.id, last.score, last.id) {
			worst = last
		}
	}
	if worst != nil {
		s.remove(s.byID[worst.id])
	}
}

// Get implements Store.Get.
func (s *TreapStore) Get(_ context.Context, analysisID string) (model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[analysisID]
	if !ok {
		return model.AnalysisRecord{}, ErrNotFound
	}
	return rec, nil
}

// Rank implements Store.Rank in O(log n). Equal scores share a rank.
func (s *TreapStore) Rank(_ context.Context, analysisID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[analysisID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e := entryOf(rec)
	e.Rank = 1 + countHigher(s.roots[rec.JobKey], toFixedPoint(rec.Score.OverallScore))
	return e, nil
}

// TopN implements Store.TopN. An unknown job yields an empty list.
func (s *TreapStore) TopN(_ context.Context, jobKey string, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, nsize(s.roots[jobKey])))
	collectTopN(s.roots[jobKey], n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Jobs returns the number of distinct job keys.
func (s *TreapStore) Jobs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roots)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateShortlistEntries(s.Count(ctx))
			}
		}
	}()
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes its position (1, 2, 2, 4).
func assignRanksWithTies(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
