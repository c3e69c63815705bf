package batch

import "fmt"

// Verify checks the shortlist against the analyses of the run: ranks are
// contiguous from 1, scores never increase, and every screened candidate
// scoring above the last shortlisted score is on the list.
func Verify(r *Report) error {
	listed := make(map[string]struct{}, len(r.Shortlist))
	for i, e := range r.Shortlist {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrInconsistent, i, e.Rank)
		}
		if i > 0 && e.Score > r.Shortlist[i-1].Score {
			return fmt.Errorf("%w: rank %d scores %.2f above rank %d", ErrInconsistent, e.Rank, e.Score, i)
		}
		listed[e.AnalysisID] = struct{}{}
	}
	if len(r.Shortlist) == 0 {
		if r.Succeeded > 0 {
			return fmt.Errorf("%w: shortlist is empty", ErrInconsistent)
		}
		return nil
	}
	floor := r.Shortlist[len(r.Shortlist)-1].Score
	for _, c := range r.Candidates {
		if c.Error != "" || c.Score <= floor {
			continue
		}
		if _, ok := listed[c.AnalysisID]; !ok {
			return fmt.Errorf("%w: %s scored %.2f but is not shortlisted", ErrInconsistent, c.File, c.Score)
		}
	}
	return nil
}
