package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/cvscreen/internal/adapters/http/api"
	"github.com/okian/cvscreen/internal/config"
	"github.com/okian/cvscreen/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const testCV = `Jane Doe
Email: jane.doe@example.com

Skills
Python, Django, SQL, Docker

Experience
Senior Backend Engineer at Acme Payments - 4 years
Backend Engineer at Globex - 2 years
`

const testJob = `Senior Python Developer
We need 5+ years of experience with Python, Django and SQL.
`

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfiguration(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("CVSCREEN_ADDR", ":8080")
			_ = os.Setenv("CVSCREEN_QUEUE_SIZE", "200")
			_ = os.Setenv("CVSCREEN_WORKER_COUNT", "4")
			_ = os.Setenv("CVSCREEN_SCORING__PENALTY_PER_FLAG", "5")
			defer func() {
				_ = os.Unsetenv("CVSCREEN_ADDR")
				_ = os.Unsetenv("CVSCREEN_QUEUE_SIZE")
				_ = os.Unsetenv("CVSCREEN_WORKER_COUNT")
				_ = os.Unsetenv("CVSCREEN_SCORING__PENALTY_PER_FLAG")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				c, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.Addr, convey.ShouldEqual, ":8080")
				convey.So(c.QueueSize, convey.ShouldEqual, 200)
				convey.So(c.WorkerCount, convey.ShouldEqual, 4)
				convey.So(thresholdsFrom(c.Scoring).PenaltyPerFlag, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When settings are derived from the defaults", func() {
			c := config.New(context.Background())
			st := settingsFrom(c, false, true)

			convey.Convey("Then limits and features carry over", func() {
				convey.So(st.MaxCVLength, convey.ShouldEqual, c.MaxCVLength)
				convey.So(st.AllowedFileTypes, convey.ShouldResemble, c.AllowedFileTypes)
				convey.So(st.RateLimitWindow, convey.ShouldEqual, 24*time.Hour)
				convey.So(st.Features.Realtime, convey.ShouldBeTrue)
				convey.So(st.Features.LLMParsing, convey.ShouldBeFalse)
				convey.So(st.Features.LLMChat, convey.ShouldBeTrue)
				convey.So(st.Version, convey.ShouldEqual, version)
			})
		})

		convey.Convey("When the service is built from the defaults", func() {
			c := config.New(context.Background())
			tax, err := loadTaxonomy("")
			convey.So(err, convey.ShouldBeNil)
			parser, assistant, err := newLLM(context.Background(), c)
			convey.So(err, convey.ShouldBeNil)
			svc := newService(c, tax, parser, assistant, nil, logger.Get())

			convey.Convey("Then it runs without an LLM", func() {
				convey.So(parser, convey.ShouldBeNil)
				convey.So(assistant, convey.ShouldBeNil)
				convey.So(svc.GetStats()["llmParsing"], convey.ShouldEqual, false)
				convey.So(svc.GetStats()["llmChat"], convey.ShouldEqual, false)
				convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, c.WorkerCount)
			})
		})

		convey.Convey("When the taxonomy file is missing", func() {
			_, err := loadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestCommands(t *testing.T) {
	convey.Convey("Given the cvscreen command", t, func() {
		dir := t.TempDir()
		cvPath := filepath.Join(dir, "cv.txt")
		jobPath := filepath.Join(dir, "job.txt")
		convey.So(os.WriteFile(cvPath, []byte(testCV), 0o600), convey.ShouldBeNil)
		convey.So(os.WriteFile(jobPath, []byte(testJob), 0o600), convey.ShouldBeNil)

		convey.Convey("When a CV is scored as JSON", func() {
			out, err := execute("score", "--cv", cvPath, "--job", jobPath, "--json")

			convey.Convey("Then the full result is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				var res struct {
					Candidate struct {
						Name string `json:"name"`
					} `json:"candidate"`
					Score struct {
						OverallScore float64 `json:"overall_score"`
						Label        string  `json:"label"`
					} `json:"score"`
				}
				convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
				convey.So(res.Candidate.Name, convey.ShouldEqual, "Jane Doe")
				convey.So(res.Score.OverallScore, convey.ShouldBeBetweenOrEqual, 0, 100)
				convey.So(res.Score.Label, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When a CV is scored as a report", func() {
			out, err := execute("score", "--cv", cvPath, "--job", jobPath, "--json=false")

			convey.Convey("Then the report lists the components", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Match Analysis")
				convey.So(out, convey.ShouldContainSubstring, "Skills match")
			})
		})

		convey.Convey("When the CV file does not exist", func() {
			_, err := execute("score", "--cv", filepath.Join(dir, "nope.txt"), "--job", jobPath)

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When an admin token is issued", func() {
			out, err := execute("token", "--subject", "ops", "--ttl", "1h")

			convey.Convey("Then it validates with the configured secret", func() {
				convey.So(err, convey.ShouldBeNil)
				tokens, err := api.NewTokens(cfg.SecretKey)
				convey.So(err, convey.ShouldBeNil)
				claims, err := tokens.Validate(strings.TrimSpace(out))
				convey.So(err, convey.ShouldBeNil)
				convey.So(claims.Subject, convey.ShouldEqual, "ops")
			})
		})

		convey.Convey("When the version is requested", func() {
			out, err := execute("version")

			convey.Convey("Then it is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.TrimSpace(out), convey.ShouldEqual, version)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("When their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			c := config.New(context.Background())
			svc := newService(c, nil, nil, nil, nil, logger.Get())

			convey.Convey("Then they return", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updated once", func() {
			c := config.New(context.Background())
			svc := newService(c, nil, nil, nil, nil, logger.Get())

			convey.Convey("Then nothing panics", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
