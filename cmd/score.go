package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/extract/textextract"
	"github.com/okian/cvscreen/pkg/logger"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one CV against a job description without a server",
	Long:  "Score reads a CV (pdf, docx, txt or html) and a plain-text job description, runs the regex extractors and the scoring engine locally, and prints the result.",
	RunE:  runScore,
}

var (
	scoreCVFile   string
	scoreJobFile  string
	scoreJSON     bool
	scoreEnhanced bool
)

func init() {
	scoreCmd.Flags().StringVar(&scoreCVFile, "cv", "", "Path to the CV file (required)")
	scoreCmd.Flags().StringVar(&scoreJobFile, "job", "", "Path to the job description (required)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the full result as JSON")
	scoreCmd.Flags().BoolVar(&scoreEnhanced, "enhanced", false, "Include digital-media scores")
	_ = scoreCmd.MarkFlagRequired("cv")
	_ = scoreCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cvText, err := readDocument(scoreCVFile)
	if err != nil {
		return err
	}
	jobText, err := readDocument(scoreJobFile)
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return err
	}

	svc := newService(cfg, tax, nil, nil, nil, logger.Get())
	res, err := svc.Evaluate(cmd.Context(), cvText, jobText, scoreEnhanced)
	if err != nil {
		return fmt.Errorf("failed to score: %w", err)
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printScore(out, res)
	return nil
}

// readDocument extracts the text of a CV or job description file.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := textextract.Extract(filepath.Base(path), data)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return text, nil
}

func scoreColor(score float64) func(format string, a ...any) string {
	switch {
	case score >= 70:
		return color.GreenString
	case score >= 50:
		return color.YellowString
	default:
		return color.RedString
	}
}

func printScore(w io.Writer, res model.AnalysisResult) {
	s := res.Score
	fmt.Fprintln(w, color.New(color.Bold, color.Underline).Sprint("Match Analysis"))
	fmt.Fprintf(w, "%s vs %s\n", res.Candidate.Name, res.Job.Title)
	fmt.Fprintf(w, "Overall: %s  %s  (confidence %d/10)\n",
		scoreColor(s.OverallScore)("%.1f", s.OverallScore), s.Label, s.Confidence)
	fmt.Fprintf(w, "%s\n\n", s.Recommendation)

	rows := []struct {
		name  string
		value float64
	}{
		{"Domain relevance", s.DomainRelevance},
		{"Skills match", s.SkillsMatch},
		{"Experience relevance", s.ExperienceRelevance},
		{"Experience quantity", s.ExperienceQuantity},
		{"Career progression", s.CareerProgression},
		{"Technical depth", s.TechnicalDepth},
		{"Education match", s.EducationMatch},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-22s %s\n", r.name, scoreColor(r.value)("%5.1f", r.value))
	}
	fmt.Fprintf(w, "\nJob domain: %s   Candidate domains: %s\n", s.JobDomain, joinDomains(s.CandidateDomains))

	section(w, color.GreenString("Matched skills:"), color.GreenString("✓"), s.MatchedSkills)
	section(w, color.RedString("Missing skills:"), color.RedString("✗"), s.MissingSkills)
	section(w, color.RedString("Red flags:"), color.RedString("⚠"), s.RedFlags)
	section(w, color.GreenString("Strengths:"), color.GreenString("•"), s.Strengths)
	section(w, color.YellowString("Concerns:"), color.YellowString("•"), s.Concerns)

	if e := res.Enhanced; e != nil {
		fmt.Fprintf(w, "\n%s %.1f (SEO %.0f, martech %.0f, analytics %.0f, leadership %.0f)\n",
			color.CyanString("Digital media:"), e.DigitalMediaOverall,
			e.SEOExpertise, e.MartechProficiency, e.AnalyticsCapability, e.PlatformLeadership)
	}
}

func section(w io.Writer, title, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  %s %s\n", bullet, it)
	}
}

func joinDomains(ds []model.Domain) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = string(d)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
