package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cvscreen/internal/domain/dedupe"
	"github.com/okian/cvscreen/internal/domain/enhanced"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/okian/cvscreen/internal/extract/cvparser"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

// Analysis modes, used as metric labels.
const (
	modeSync     = "sync"
	modeEnhanced = "enhanced"
	modeChat     = "chat"
)

type progressKey struct{}

// withProgress makes the engine report its steps to fn.
func withProgress(ctx context.Context, fn func(process.Context)) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func observe(ctx context.Context, pc process.Context) {
	if fn, ok := ctx.Value(progressKey{}).(func(process.Context)); ok && fn != nil {
		fn(pc)
	}
}

// Evaluate parses both texts with the regex extractors and scores them. It
// stores nothing and works without Start.
func (s *Service) Evaluate(ctx context.Context, cvText, jobText string, withEnhanced bool) (model.AnalysisResult, error) {
	if err := s.checkTexts(cvText, jobText); err != nil {
		return model.AnalysisResult{}, err
	}
	start := time.Now()
	cv := s.cvParser.Parse(cvText).Candidate
	job := s.jobParser.Parse(jobText)
	return s.score(ctx, start, cvText, jobText, cv, job, model.ParserRegex, withEnhanced)
}

// Analyze scores a CV against a job description with the regex extractors
// and stores the result in the job's shortlist.
func (s *Service) Analyze(ctx context.Context, cvText, jobText string) (model.AnalysisResult, error) {
	res, err := s.Evaluate(ctx, cvText, jobText, false)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	s.record(ctx, modeSync, res)
	return res, nil
}

// AnalyzeEnhanced parses the CV with the LLM, falling back to the regex
// extractor, while the job description is parsed, then adds the
// digital-media scores.
func (s *Service) AnalyzeEnhanced(ctx context.Context, cvText, jobText string) (model.AnalysisResult, error) {
	if !s.enhancedEnabled {
		return model.AnalysisResult{}, fmt.Errorf("enhanced analysis: %w", ErrFeatureDisabled)
	}
	if err := s.checkTexts(cvText, jobText); err != nil {
		return model.AnalysisResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.enhancedTimeout)
	defer cancel()
	start := time.Now()

	var (
		cv     model.Candidate
		parser string
		job    model.JobRequirements
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cv, parser = s.parseCV(gctx, cvText)
		return nil
	})
	g.Go(func() error {
		job = s.jobParser.Parse(jobText)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.AnalysisResult{}, err
	}

	res, err := s.score(ctx, start, cvText, jobText, cv, job, parser, true)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	s.record(ctx, modeEnhanced, res)
	return res, nil
}

// Run implements worker.Pipeline for queued real-time analyses. The CV goes
// through the LLM when one is configured, with the regex extractor as fallback.
func (s *Service) Run(ctx context.Context, job model.AnalysisJob, progress func(process.Context)) (model.AnalysisRecord, error) {
	start := time.Now()
	step := func(pc process.Context) {
		pc.Elapsed = time.Since(start)
		progress(pc)
	}

	parsed := s.cvParser.Parse(job.CVText)
	cv, parser := parsed.Candidate, model.ParserRegex
	if s.llm != nil {
		lctx, cancel := context.WithTimeout(ctx, s.enhancedTimeout)
		cv, parser = s.parseCV(lctx, job.CVText)
		cancel()
	}
	step(process.Context{
		Step:       process.StepCVParsing,
		Confidence: candidateConfidence(cv),
		WordCount:  parsed.WordCount,
		Sections:   parsed.Sections,
	})

	req := s.jobParser.Parse(job.JobText)
	step(process.Context{
		Step:       process.StepJobParsing,
		Confidence: jobConfidence(req),
		Detected:   req.RequiredSkills,
		TotalYears: req.MinExperienceYears,
	})

	score, err := s.engine.Analyze(withProgress(ctx, step), cv, req)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	for _, rule := range score.RedFlagRules {
		metrics.RecordRedFlag(rule)
	}

	var extra *model.EnhancedScores
	if s.enhancedEnabled {
		e := enhanced.Analyze(s.tax, job.CVText, cv)
		extra = &e
		for _, pc := range enhancedSteps(e) {
			step(pc)
		}
	}

	step(process.Context{
		Step:       process.StepReportGeneration,
		Confidence: float64(score.Confidence) / 10,
		Overall:    score.OverallScore,
	})

	return model.AnalysisRecord{
		ID:            job.ID,
		JobKey:        dedupe.JobKey(job.JobText),
		JobTitle:      req.Title,
		SessionID:     job.SessionID,
		CandidateName: cv.Name,
		Parser:        parser,
		Score:         score,
		Enhanced:      extra,
		CreatedAt:     s.now(),
	}, nil
}

func (s *Service) score(ctx context.Context, start time.Time, cvText, jobText string, cv model.Candidate, job model.JobRequirements, parser string, withEnhanced bool) (model.AnalysisResult, error) {
	score, err := s.engine.Analyze(ctx, cv, job)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	res := model.AnalysisResult{
		AnalysisID: uuid.NewString(),
		JobKey:     dedupe.JobKey(jobText),
		Candidate:  cv,
		Job:        job,
		Score:      score,
		Parser:     parser,
	}
	if withEnhanced {
		e := enhanced.Analyze(s.tax, cvText, cv)
		res.Enhanced = &e
	}
	res.ProcessingTimeMS = time.Since(start).Milliseconds()
	return res, nil
}

// record stores a synchronous result. A store failure is logged, not
// returned: the caller already has its answer.
func (s *Service) record(ctx context.Context, mode string, res model.AnalysisResult) {
	metrics.RecordAnalysis(mode, string(res.Score.Label), res.Score.OverallScore, float64(res.ProcessingTimeMS))
	for _, rule := range res.Score.RedFlagRules {
		metrics.RecordRedFlag(rule)
	}
	if err := s.save(ctx, res.Record(s.now())); err != nil {
		s.logger.Warn(ctx, "analysis not stored",
			logger.String("analysis_id", res.AnalysisID),
			logger.Error(err),
		)
	}
}

func (s *Service) parseCV(ctx context.Context, text string) (model.Candidate, string) {
	if s.llm != nil {
		cv, err := s.llm.ParseCV(ctx, text)
		if err == nil {
			return cv, model.ParserLLM
		}
		metrics.RecordExtractionFailure(model.ParserLLM)
		s.logger.Warn(ctx, "llm parsing failed, using regex extractor", logger.Error(err))
	}
	return s.cvParser.Parse(text).Candidate, model.ParserRegex
}

// candidateConfidence is the share of CV parts the parser found.
func candidateConfidence(c model.Candidate) float64 {
	found := 0
	for _, ok := range []bool{
		c.Name != cvparser.UnknownName,
		c.Contact.Email != "" || c.Contact.Phone != "",
		len(c.Skills) > 0,
		len(c.Experience) > 0,
		len(c.Education) > 0,
	} {
		if ok {
			found++
		}
	}
	return float64(found) / 5
}

func jobConfidence(j model.JobRequirements) float64 {
	switch {
	case len(j.RequiredSkills) >= 3:
		return 0.9
	case len(j.RequiredSkills) > 0:
		return 0.6
	default:
		return 0.3
	}
}

// enhancedSteps reports the digital-media detections as pipeline steps.
func enhancedSteps(e model.EnhancedScores) []process.Context {
	kw := e.DetectedKeywords
	return []process.Context{
		{Step: process.StepSEOSEMDetection, Confidence: e.SEOExpertise / 100, Detected: kw[taxonomy.CategorySEO]},
		{Step: process.StepMartechAnalysis, Confidence: e.MartechProficiency / 100, Detected: kw[taxonomy.CategoryMartech]},
		{Step: process.StepAnalyticsAssessment, Confidence: e.AnalyticsCapability / 100, Detected: kw[taxonomy.CategoryAnalytics]},
		{Step: process.StepLeadershipEvaluation, Confidence: e.PlatformLeadership / 100},
		{Step: process.StepRemoteCapability, Confidence: e.RemoteLeadership / 100, Detected: kw[taxonomy.CategoryRemote]},
		{Step: process.StepExecutiveReadiness, Confidence: e.ExecutiveReadiness / 100, Detected: e.ExecutiveIndicators},
	}
}
