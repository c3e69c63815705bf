package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// client talks to the cvscreen HTTP API.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var e apiError
		_ = json.Unmarshal(body, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		return fmt.Errorf("%w: HTTP %d %s", ErrUnexpectedCode, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, out.Status)
	}
	return nil
}

// extract uploads a document and returns its text.
func (c *client) extract(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out struct {
		FileContent string `json:"file_content"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return "", err
	}
	return out.FileContent, nil
}

type analyzeResponse struct {
	AnalysisID string `json:"analysis_id"`
	JobKey     string `json:"job_key"`
	Parser     string `json:"parser"`
	Candidate  struct {
		Name string `json:"name"`
	} `json:"candidate"`
	Score struct {
		OverallScore float64  `json:"overall_score"`
		Label        string   `json:"label"`
		RedFlags     []string `json:"red_flags"`
	} `json:"score"`
}

func (c *client) analyze(ctx context.Context, cvText, jobText string, enhanced bool) (analyzeResponse, error) {
	path := "/api/analyze"
	if enhanced {
		path = "/api/analyze-enhanced"
	}
	payload, err := json.Marshal(map[string]string{"cv_text": cvText, "job_description": jobText})
	if err != nil {
		return analyzeResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return analyzeResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out analyzeResponse
	err = c.do(req, http.StatusOK, &out)
	return out, err
}

func (c *client) shortlist(ctx context.Context, jobKey string, limit int) ([]Entry, error) {
	q := url.Values{"job_key": {jobKey}, "limit": {fmt.Sprint(limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/shortlist?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
