package api_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/cvscreen/internal/adapters/http/api"
	"github.com/okian/cvscreen/internal/adapters/mq/queue"
	"github.com/okian/cvscreen/internal/adapters/repository"
	"github.com/okian/cvscreen/internal/domain/dedupe"
	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	result    model.AnalysisResult
	err       error
	submitErr error
	readErr   error
	rec       model.AnalysisRecord
	entry     repository.Entry
	entries   []repository.Entry

	chatErr     error
	lastChat    model.ChatMessage
	lastSession string
	lastJobKey  string
	lastLimit   int
	calls       int
}

func (m *mockDependencies) Analyze(_ context.Context, cv, job string) (model.AnalysisResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockDependencies) AnalyzeEnhanced(_ context.Context, cv, job string) (model.AnalysisResult, error) {
	m.calls++
	res := m.result
	res.Enhanced = &model.EnhancedScores{SEOExpertise: 40}
	return res, m.err
}

func (m *mockDependencies) Submit(_ context.Context, sessionID, cv, job string) (model.AnalysisJob, error) {
	m.lastSession = sessionID
	if m.submitErr != nil {
		return model.AnalysisJob{}, m.submitErr
	}
	if sessionID == "" {
		sessionID = "generated"
	}
	return model.AnalysisJob{ID: "analysis-1", SessionID: sessionID}, nil
}

func (m *mockDependencies) Analysis(_ context.Context, id string) (model.AnalysisRecord, repository.Entry, error) {
	if m.readErr != nil {
		return model.AnalysisRecord{}, repository.Entry{}, m.readErr
	}
	return m.rec, m.entry, nil
}

func (m *mockDependencies) Shortlist(_ context.Context, jobKey string, n int) ([]repository.Entry, error) {
	m.lastJobKey, m.lastLimit = jobKey, n
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.entries, nil
}

func (m *mockDependencies) Chat(_ context.Context, sessionID string, msg model.ChatMessage) (model.ChatReply, error) {
	m.calls++
	m.lastSession, m.lastChat = sessionID, msg
	if m.chatErr != nil {
		return model.ChatReply{}, m.chatErr
	}
	if sessionID == "" {
		sessionID = "generated"
	}
	return model.ChatReply{SessionID: sessionID, Content: "echo: " + msg.Content, Type: model.ChatText}, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

type mockSockets struct {
	session string
	monitor bool
}

func (m *mockSockets) ServeSession(w http.ResponseWriter, _ *http.Request, sessionID string) {
	m.session = sessionID
	w.WriteHeader(http.StatusOK)
}

func (m *mockSockets) ServeMonitor(w http.ResponseWriter, _ *http.Request) {
	m.monitor = true
	w.WriteHeader(http.StatusOK)
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...).Register(context.Background(), mux)
	return mux
}

func settings() api.Settings {
	st := api.DefaultSettings()
	st.Version = "1.2.3"
	st.Features.RateLimiting = false
	return st
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

const validBody = `{"cv_text":"Jane Doe\nPython","job_description":"Python developer"}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, api.WithSettings(settings()))

		Convey("When the health endpoint is called", func() {
			w := do(mux, http.MethodGet, "/health", "")

			Convey("Then it reports healthy with the version", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["status"], ShouldEqual, "healthy")
				So(body["version"], ShouldEqual, "1.2.3")
			})
		})

		Convey("When metrics and stats are requested", func() {
			metrics := do(mux, http.MethodGet, "/metrics", "")
			stats := do(mux, http.MethodGet, "/stats", "")

			Convey("Then both are served", func() {
				So(metrics.Code, ShouldEqual, http.StatusOK)
				So(metrics.Body.String(), ShouldContainSubstring, "cvscreen_")
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(decode(stats)["started"], ShouldEqual, true)
			})
		})

		Convey("When the public configuration is requested", func() {
			w := do(mux, http.MethodGet, "/api/config", "")

			Convey("Then limits and features are listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["max_cv_length"], ShouldEqual, 50000)
				So(body["allowed_file_types"], ShouldResemble, []any{"pdf", "docx", "txt", "html"})
				features := body["features"].(map[string]any)
				So(features["realtime_analysis"], ShouldEqual, true)
			})
		})

		Convey("When the monitor page is requested", func() {
			w := do(mux, http.MethodGet, "/monitor", "")

			Convey("Then the page is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/ws/monitor")
			})
		})
	})
}

func TestAnalyzeHandlers(t *testing.T) {
	Convey("Given an API server over a working analyzer", t, func() {
		deps := &mockDependencies{result: model.AnalysisResult{
			AnalysisID: "a-1",
			JobKey:     "job-1",
			Score:      model.ComprehensiveScore{OverallScore: 72.5, Label: model.LabelGood},
			Parser:     model.ParserRegex,
		}}
		st := settings()
		st.MaxCVLength = 40
		mux := newMux(deps, api.WithSettings(st))

		Convey("When a valid analysis is posted", func() {
			w := do(mux, http.MethodPost, "/api/analyze", validBody)

			Convey("Then the result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["analysis_id"], ShouldEqual, "a-1")
				So(body["parser"], ShouldEqual, "regex")
				So(body["score"].(map[string]any)["overall_score"], ShouldEqual, 72.5)
			})
		})

		Convey("When an enhanced analysis is posted", func() {
			w := do(mux, http.MethodPost, "/api/analyze-enhanced", validBody)

			Convey("Then the enhanced scores are included", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["enhanced"].(map[string]any)["seo_expertise"], ShouldEqual, 40)
			})
		})

		Convey("When the body is invalid", func() {
			cases := map[string]string{
				"not json":    `{`,
				"missing cv":  `{"job_description":"x"}`,
				"missing job": `{"cv_text":"x"}`,
				"cv too long": fmt.Sprintf(`{"cv_text":%q,"job_description":"x"}`, strings.Repeat("a", 41)),
			}

			Convey("Then each is rejected before analysis", func() {
				for name, body := range cases {
					w := do(mux, http.MethodPost, "/api/analyze", body)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(decode(w)["code"], ShouldEqual, "bad_request")
					_ = name
				}
				So(deps.calls, ShouldEqual, 0)
			})
		})

		Convey("When the analyzer rejects the input", func() {
			deps.err = fmt.Errorf("%w: experience[0].duration_months", engine.ErrInvalidInput)
			w := do(mux, http.MethodPost, "/api/analyze", validBody)

			Convey("Then the error maps to 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["message"], ShouldContainSubstring, "duration_months")
			})
		})

		Convey("When the wrong method is used", func() {
			w := do(mux, http.MethodGet, "/api/analyze", "")

			Convey("Then the route is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given the optional analyses are switched off", t, func() {
		st := settings()
		st.Features.EnhancedAnalysis = false
		st.Features.Realtime = false
		mux := newMux(&mockDependencies{}, api.WithSettings(st))

		Convey("Then both endpoints answer 403", func() {
			So(do(mux, http.MethodPost, "/api/analyze-enhanced", validBody).Code, ShouldEqual, http.StatusForbidden)
			So(do(mux, http.MethodPost, "/api/analyze-realtime", validBody).Code, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestRealtimeHandler(t *testing.T) {
	Convey("Given an API server accepting submissions", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, api.WithSettings(settings()))

		Convey("When an analysis is submitted for a session", func() {
			w := do(mux, http.MethodPost, "/api/analyze-realtime?session_id=s-42", validBody)

			Convey("Then it is accepted with the socket to follow", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				body := decode(w)
				So(body["analysis_id"], ShouldEqual, "analysis-1")
				So(body["session_id"], ShouldEqual, "s-42")
				So(body["status"], ShouldEqual, "queued")
				So(body["websocket_url"], ShouldEqual, "/ws/analysis?session_id=s-42")
				So(deps.lastSession, ShouldEqual, "s-42")
			})
		})

		Convey("When the submission is a duplicate", func() {
			deps.submitErr = fmt.Errorf("session s: %w", dedupe.ErrDuplicate)
			w := do(mux, http.MethodPost, "/api/analyze-realtime?session_id=s", validBody)

			Convey("Then it conflicts", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["code"], ShouldEqual, "duplicate")
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("enqueue analysis: %w", queue.ErrFull)
			w := do(mux, http.MethodPost, "/api/analyze-realtime", validBody)

			Convey("Then backpressure is reported", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(w)["code"], ShouldEqual, "backpressure")
			})
		})
	})
}

func TestReadHandlers(t *testing.T) {
	Convey("Given an API server with stored analyses", t, func() {
		deps := &mockDependencies{
			rec:   model.AnalysisRecord{ID: "a-1", JobKey: "job-1", CandidateName: "Jane Doe"},
			entry: repository.Entry{Rank: 3, AnalysisID: "a-1"},
			entries: []repository.Entry{
				{Rank: 1, AnalysisID: "a-2", Score: 90},
				{Rank: 2, AnalysisID: "a-3", Score: 80},
			},
		}
		mux := newMux(deps, api.WithSettings(settings()))

		Convey("When an analysis is fetched", func() {
			w := do(mux, http.MethodGet, "/api/analyses/a-1", "")

			Convey("Then it comes with its rank", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["rank"], ShouldEqual, 3)
				So(body["analysis"].(map[string]any)["candidate_name"], ShouldEqual, "Jane Doe")
			})
		})

		Convey("When the id is missing or unknown", func() {
			missing := do(mux, http.MethodGet, "/api/analyses/", "")
			deps.readErr = repository.ErrNotFound
			unknown := do(mux, http.MethodGet, "/api/analyses/nope", "")

			Convey("Then 400 and 404 are returned", func() {
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(unknown.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a shortlist is requested without a limit", func() {
			w := do(mux, http.MethodGet, "/api/shortlist?job_key=job-1", "")

			Convey("Then the default limit applies", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastJobKey, ShouldEqual, "job-1")
				So(deps.lastLimit, ShouldEqual, 10)
				So(decode(w)["entries"], ShouldHaveLength, 2)
			})
		})

		Convey("When the shortlist query is invalid", func() {
			noKey := do(mux, http.MethodGet, "/api/shortlist?limit=5", "")
			zero := do(mux, http.MethodGet, "/api/shortlist?job_key=j&limit=0", "")
			tooMany := do(mux, http.MethodGet, "/api/shortlist?job_key=j&limit=101", "")

			Convey("Then it is rejected", func() {
				So(noKey.Code, ShouldEqual, http.StatusBadRequest)
				So(zero.Code, ShouldEqual, http.StatusBadRequest)
				So(tooMany.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(tooMany)["code"], ShouldEqual, "limit_exceeded")
			})
		})
	})
}

func uploadRequest(name string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	So(err, ShouldBeNil)
	_, _ = part.Write(content)
	So(mw.Close(), ShouldBeNil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func docx(text string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	So(err, ShouldBeNil)
	_, err = w.Write([]byte("<w:document><w:body><w:p><w:r><w:t>" + text + "</w:t></w:r></w:p></w:body></w:document>"))
	So(err, ShouldBeNil)
	So(zw.Close(), ShouldBeNil)
	return buf.Bytes()
}

func TestUploadHandler(t *testing.T) {
	Convey("Given an API server accepting uploads", t, func() {
		mux := newMux(&mockDependencies{}, api.WithSettings(settings()))

		upload := func(name, content string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest(name, []byte(content)))
			return w
		}

		Convey("When a text CV is uploaded", func() {
			w := upload("cv.txt", "Jane Doe\r\n\r\n\r\nPython,   SQL")

			Convey("Then its normalized text is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["success"], ShouldEqual, true)
				So(body["file_content"], ShouldEqual, "Jane Doe\n\nPython, SQL")
				So(body["file_id"], ShouldNotBeEmpty)
			})
		})

		Convey("When an unsupported or empty file is uploaded", func() {
			exe := upload("cv.exe", "MZ")
			empty := upload("cv.txt", "   ")

			Convey("Then it is rejected", func() {
				So(exe.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(exe)["code"], ShouldEqual, "unsupported_file_type")
				So(empty.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})

		Convey("When a small docx inflates past the limit", func() {
			st := settings()
			st.MaxFileSizeMB = 1
			limited := newMux(&mockDependencies{}, api.WithSettings(st))
			data := docx(strings.Repeat("a", 5<<20))
			So(len(data), ShouldBeLessThan, 1<<20)
			w := httptest.NewRecorder()
			limited.ServeHTTP(w, uploadRequest("cv.docx", data))

			Convey("Then it is refused as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decode(w)["code"], ShouldEqual, "file_too_large")
			})
		})

		Convey("When the file part is missing", func() {
			w := do(mux, http.MethodPost, "/api/upload", "")

			Convey("Then the request is bad", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestRateLimitingAndCORS(t *testing.T) {
	Convey("Given a server limited to two analyses per client", t, func() {
		st := settings()
		st.Features.RateLimiting = true
		st.RateLimitCalls = 2
		st.RateLimitWindow = time.Hour
		st.TrustedProxies = []string{"192.0.2.0/24", "10.0.0.0/8"}
		mux := newMux(&mockDependencies{}, api.WithSettings(st))

		post := func(ip string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(validBody))
			req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When a client exceeds the limit", func() {
			So(post("203.0.113.7").Code, ShouldEqual, http.StatusOK)
			So(post("203.0.113.7").Code, ShouldEqual, http.StatusOK)
			w := post("203.0.113.7")

			Convey("Then the third call is refused with the counts", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				body := decode(w)
				So(body["error"], ShouldEqual, "Rate limit exceeded")
				So(body["calls_made"], ShouldEqual, 2)
				So(body["max_calls"], ShouldEqual, 2)
			})

			Convey("And other clients and loopback are unaffected", func() {
				So(post("198.51.100.1").Code, ShouldEqual, http.StatusOK)
				for i := 0; i < 5; i++ {
					So(post("127.0.0.1").Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("And read endpoints are not limited", func() {
				So(do(mux, http.MethodGet, "/api/config", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And uploads count against the same allowance", func() {
				req := uploadRequest("cv.txt", []byte("Jane Doe"))
				req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When a client uploads repeatedly", func() {
			codes := make([]int, 0, 4)
			for i := 0; i < 4; i++ {
				req := uploadRequest("cv.txt", []byte("Jane Doe"))
				req.Header.Set("X-Forwarded-For", "203.0.113.9")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				codes = append(codes, w.Code)
			}

			Convey("Then uploads past the limit are refused", func() {
				So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests})
			})
		})
	})

	Convey("Given a limited server that trusts no proxy", t, func() {
		st := settings()
		st.Features.RateLimiting = true
		st.RateLimitCalls = 1
		st.RateLimitWindow = time.Hour
		st.TrustedProxies = nil
		mux := newMux(&mockDependencies{}, api.WithSettings(st))

		Convey("When a remote client claims to be loopback", func() {
			codes := make([]int, 0, 3)
			for i := 0; i < 3; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(validBody))
				req.RemoteAddr = "203.0.113.50:40000"
				req.Header.Set("X-Forwarded-For", "127.0.0.1")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				codes = append(codes, w.Code)
			}

			Convey("Then it is limited by its own address", func() {
				So(codes, ShouldResemble, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests})
			})
		})
	})

	Convey("Given a server allowing one origin", t, func() {
		st := settings()
		st.CORSOrigins = []string{"https://hr.example.com"}
		mux := newMux(&mockDependencies{}, api.WithSettings(st))

		preflight := func(origin string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
			req.Header.Set("Origin", origin)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("Then only that origin is allowed", func() {
			ok := preflight("https://hr.example.com")
			So(ok.Code, ShouldEqual, http.StatusNoContent)
			So(ok.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://hr.example.com")
			So(preflight("https://evil.example").Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}

func TestSocketHandlers(t *testing.T) {
	Convey("Given a server with sockets and admin tokens", t, func() {
		sockets := &mockSockets{}
		tokens, err := api.NewTokens("s3cret")
		So(err, ShouldBeNil)
		mux := newMux(&mockDependencies{}, api.WithSettings(settings()), api.WithSockets(sockets), api.WithTokens(tokens))

		Convey("When a session socket is opened", func() {
			missing := do(mux, http.MethodGet, "/ws/analysis", "")
			ok := do(mux, http.MethodGet, "/ws/analysis?session_id=s-1", "")

			Convey("Then the session id is required and passed on", func() {
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(sockets.session, ShouldEqual, "s-1")
			})
		})

		Convey("When the monitor is opened", func() {
			bad := do(mux, http.MethodGet, "/ws/monitor?admin_token=nope", "")
			So(sockets.monitor, ShouldBeFalse)
			token, err := tokens.Issue("ops", time.Hour)
			So(err, ShouldBeNil)
			good := do(mux, http.MethodGet, "/ws/monitor?admin_token="+token, "")

			Convey("Then only a valid admin token gets through", func() {
				So(bad.Code, ShouldEqual, http.StatusUnauthorized)
				So(good.Code, ShouldEqual, http.StatusOK)
				So(sockets.monitor, ShouldBeTrue)
			})
		})
	})

	Convey("Given a server without token service", t, func() {
		mux := newMux(&mockDependencies{}, api.WithSettings(settings()), api.WithSockets(&mockSockets{}))

		Convey("Then the monitor is closed", func() {
			So(do(mux, http.MethodGet, "/ws/monitor?admin_token=x", "").Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
