// Package textextract turns uploaded documents into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
)

const bytesPerMB = 1024 * 1024

var (
	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	breakRuns  = regexp.MustCompile(`\n\s*\n+`)
	noiseNodes = "script, style, noscript, nav, footer, header"
)

// FileType returns the lower-case extension of filename without the dot.
func FileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// ValidateType checks that filename has one of the allowed extensions.
func ValidateType(filename string, allowed []string) error {
	ext := FileType(filename)
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedType, ext, strings.Join(allowed, ", "))
}

// ValidateSize checks that data is at most maxMB megabytes. A non-positive
// limit disables the check.
func ValidateSize(data []byte, maxMB int) error {
	if maxMB > 0 && len(data) > maxMB*bytesPerMB {
		return fmt.Errorf("%w: %d bytes exceeds %d MB", ErrTooLarge, len(data), maxMB)
	}
	return nil
}

// Extract returns the text of data, choosing the decoder from the extension
// of filename.
func Extract(filename string, data []byte, opts ...Option) (string, error) {
	cfg := settings{maxExpanded: DefaultMaxExpandedMB * bytesPerMB}
	for _, opt := range opts {
		opt(&cfg)
	}
	var (
		text string
		err  error
	)
	switch FileType(filename) {
	case "pdf":
		text, err = fromPDF(data, cfg.maxExpanded)
	case "docx":
		text, err = fromDocx(data, cfg.maxExpanded)
	case "txt", "text", "md":
		text = fromPlain(data)
	case "html", "htm":
		text, err = FromHTML(string(data))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, FileType(filename))
	}
	if err != nil {
		return "", err
	}
	text = normalize(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func fromPDF(data []byte, limit int64) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	raw, err := readLimited(rs, limit)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(raw), nil
}

func fromDocx(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		if f.UncompressedSize64 > uint64(limit) {
			return "", fmt.Errorf("%w: document.xml inflates to %d bytes", ErrTooLarge, f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		raw, err := readLimited(rc, limit)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		xml := strings.ReplaceAll(string(raw), "</w:p>", "\n")
		xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
		return unescapeXML(xmlTags.ReplaceAllString(xml, "")), nil
	}
	return "", fmt.Errorf("%w: docx has no word/document.xml", ErrEmptyText)
}

// readLimited reads r to the end, failing with ErrTooLarge past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes of text", ErrTooLarge, limit)
	}
	return raw, nil
}

func unescapeXML(s string) string {
	return strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'").Replace(s)
}

// fromPlain decodes UTF-8, falling back to Latin-1 when the bytes are not valid UTF-8.
func fromPlain(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// FromHTML returns the readable text of an HTML document, without scripts
// and page chrome. Block elements end a line.
func FromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(noiseNodes).Remove()

	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr, section").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	root.Find("br").ReplaceWithHtml("\n")
	return normalize(root.Text()), nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = breakRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
