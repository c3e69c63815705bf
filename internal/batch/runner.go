package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cvscreen/pkg/logger"
)

// Defaults applied by Run to unset fields.
const (
	DefaultTopN    = 20
	DefaultTimeout = 90 * time.Second

	reportFilePermission = 0o600
)

var cvExtensions = map[string]struct{}{
	".pdf": {}, ".docx": {}, ".txt": {}, ".html": {}, ".htm": {},
}

// Run screens every CV in cfg against the job description, fetches the
// job's shortlist and checks it against the submitted analyses. The table
// is written to out.
func Run(ctx context.Context, cfg Config, out io.Writer) (*Report, error) {
	cfg = withDefaults(cfg)
	start := time.Now()
	log := logger.Get().Named("batch")

	job, err := os.ReadFile(cfg.JobFile)
	if err != nil {
		return nil, fmt.Errorf("read job description: %w", err)
	}
	files, err := collect(cfg.CVPaths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoCandidates
	}

	c := newClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "screening candidates",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("files", len(files)),
		logger.Int("workers", cfg.Workers),
		logger.Bool("enhanced", cfg.Enhanced))

	candidates := make([]Candidate, len(files))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, file := range files {
		g.Go(func() error {
			candidates[i] = screen(gctx, c, file, string(job), cfg.Enhanced)
			n := done.Add(1)
			if cfg.Verbose {
				log.Info(gctx, "candidate screened",
					logger.String("file", file),
					logger.Int("done", int(n)),
					logger.Int("total", len(files)),
					logger.String("error", candidates[i].Error))
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Candidates: candidates}
	for _, cand := range candidates {
		if cand.Error != "" {
			report.Failed++
			continue
		}
		report.Succeeded++
	}
	if report.Succeeded == 0 {
		return report, fmt.Errorf("all %d analyses failed: %s", report.Failed, candidates[0].Error)
	}
	for _, cand := range candidates {
		if cand.jobKey != "" {
			report.JobKey = cand.jobKey
			break
		}
	}

	report.Shortlist, err = c.shortlist(ctx, report.JobKey, cfg.TopN)
	if err != nil {
		return report, fmt.Errorf("shortlist retrieval failed: %w", err)
	}
	report.Duration = time.Since(start)

	Print(out, report)
	if cfg.OutputFile != "" {
		if err := save(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	if err := Verify(report); err != nil {
		return report, err
	}
	log.Info(ctx, "batch completed",
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration))
	return report, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// collect expands directories into the CV files they hold, sorted by path.
func collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, ok := cvExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// screen extracts the text of one CV through the upload endpoint and
// analyzes it. Failures are reported on the candidate.
func screen(ctx context.Context, c *client, file, job string, enhanced bool) Candidate {
	cand := Candidate{File: file}
	data, err := os.ReadFile(file)
	if err != nil {
		cand.Error = err.Error()
		return cand
	}
	text, err := c.extract(ctx, filepath.Base(file), data)
	if err != nil {
		cand.Error = fmt.Sprintf("extract: %v", err)
		return cand
	}
	res, err := c.analyze(ctx, text, job, enhanced)
	if err != nil {
		cand.Error = fmt.Sprintf("analyze: %v", err)
		return cand
	}
	cand.AnalysisID = res.AnalysisID
	cand.Name = res.Candidate.Name
	cand.Score = res.Score.OverallScore
	cand.Label = res.Score.Label
	cand.RedFlags = res.Score.RedFlags
	cand.Parser = res.Parser
	cand.jobKey = res.JobKey
	return cand
}

func save(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, reportFilePermission)
}
