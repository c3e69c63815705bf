// Package llm extracts structured candidates from CV text with a language model.
package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

//go:embed candidate.schema.json
var candidateSchema string

// Generator produces a text completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Parser turns CV text into a model.Candidate through a Generator. Every
// response is validated against the candidate JSON schema before use.
type Parser struct {
	settings
	gen    Generator
	schema *gojsonschema.Schema
}

// NewParser creates a Parser around gen.
func NewParser(gen Generator, opts ...Option) (*Parser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(candidateSchema))
	if err != nil {
		return nil, fmt.Errorf("load candidate schema: %w", err)
	}
	return &Parser{settings: newSettings(opts), gen: gen, schema: schema}, nil
}

// NewGeminiParser creates a Parser backed by Gemini. It returns ErrDisabled
// when apiKey is empty.
func NewGeminiParser(ctx context.Context, apiKey, modelName string, opts ...Option) (*Parser, error) {
	gen, err := NewGeminiGenerator(ctx, apiKey, modelName)
	if err != nil {
		return nil, err
	}
	return NewParser(gen, opts...)
}

// ParseCV asks the model for a structured candidate.
func (p *Parser) ParseCV(ctx context.Context, text string) (model.Candidate, error) {
	text = truncateRunes(text, p.maxInput)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.gen.GenerateContent(ctx, prompt(text))
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordLLMCall("error", latency)
		return model.Candidate{}, fmt.Errorf("parse cv: %w", err)
	}

	cv, err := p.decode(raw)
	if err != nil {
		metrics.RecordLLMCall("invalid", latency)
		p.log.Warn(ctx, "llm response rejected", logger.Error(err), logger.Int("response_bytes", len(raw)))
		return model.Candidate{}, err
	}
	metrics.RecordLLMCall("success", latency)
	p.log.Debug(ctx, "cv parsed by llm",
		logger.String("name", cv.Name),
		logger.Int("skills", len(cv.Skills)),
		logger.Int("roles", len(cv.Experience)),
		logger.Float64("latency_ms", latency))
	return cv, nil
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// decode extracts the outermost JSON object of raw, validates it and builds
// the candidate.
func (p *Parser) decode(raw string) (model.Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Candidate{}, ErrEmptyResponse
	}
	doc, ok := outermostObject(raw)
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: no JSON object in response", ErrSchema)
	}

	result, err := p.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			field := e.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, field+": "+e.Description())
		}
		return model.Candidate{}, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}

	var cv model.Candidate
	if err := json.Unmarshal([]byte(doc), &cv); err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return model.NewCandidate(cv.Name, cv.Skills, cv.Experience,
		model.WithContact(cv.Contact),
		model.WithEducation(cv.Education...),
		model.WithSummary(cv.Summary),
	), nil
}

func outermostObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func prompt(cv string) string {
	return `Parse the CV below and return ONLY a JSON object with this layout, no prose and no markdown:
{
  "name": "string",
  "contact": {"email": "string or null", "phone": "string or null", "linkedin": "string or null", "location": "string or null"},
  "skills": ["skill"],
  "experience": [{"title": "string", "company": "string", "duration_months": 0, "description": "string or null", "skills_used": ["skill"]}],
  "education": [{"degree": "string", "institution": "string or null", "graduation_year": 2020}],
  "summary": "string or null"
}
Rules: duration_months is a whole number of months (estimate 12 when unknown); list every tool, platform
and methodology under skills; keep roles in the order they appear.

CV:
` + cv
}
