// README: Bench cases; health, self-description, validation, redelivery, history, rate limit, live generation and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

type check struct {
	method      string
	path        string
	body        any
	raw         string
	header      map[string]string
	ok          []int
	pending     []int
	contentType string
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 3 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var sampleTrip = map[string]any{
	"destination": "Kyoto, Japan",
	"duration":    2,
	"startDate":   "2025-04-01",
	"travelStyle": "mid-range",
	"interests":   "temples, food",
	"budget":      map[string]any{"min": 500, "max": 1500, "currency": "usd"},
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "history/quota database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "shared rate limiter reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migrations/*.sql in order",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				files, err := migrationFiles(r.cfg.MigrationGlob)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, f := range files {
					sql, err := os.ReadFile(f)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					for _, s := range splitSQL(string(sql)) {
						if _, err := r.db.Exec(ctx, s); err != nil {
							return Result{Status: "FAIL", Note: fmt.Sprintf("%s: %v", filepath.Base(f), err)}
						}
					}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("files=%d", len(files))}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "every CREATE TABLE in migrations exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationGlob)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS", Note: strings.Join(tables, ",")}
			},
		},

		httpCase("API: health", check{method: http.MethodGet, path: "/health", ok: []int{200}}),
		httpCase("API: self-description", check{method: http.MethodGet, path: "/api/generate-itinerary", ok: []int{200}, contentType: "application/json"}),

		// Validation never reaches the model.
		httpCase("Validation: invalid body -> 400", check{path: "/api/generate-itinerary", raw: `{"destination":`, ok: []int{400}}),
		httpCase("Validation: missing duration -> 400", check{path: "/api/generate-itinerary", body: map[string]any{"destination": "Tokyo"}, ok: []int{400}}),
		httpCase("Validation: zero duration -> 400", check{path: "/api/generate-itinerary", body: map[string]any{"destination": "Tokyo", "duration": 0}, ok: []int{400}}),
		httpCase("Validation: bad travel style -> 400", check{path: "/api/generate-itinerary", body: map[string]any{"destination": "Tokyo", "duration": 2, "travelStyle": "backpacker"}, ok: []int{400}}),
		httpCase("Validation: end before start -> 400", check{path: "/api/generate-itinerary", body: map[string]any{"destination": "Tokyo", "duration": 2, "startDate": "2025-05-02", "endDate": "2025-05-01"}, ok: []int{400}}),
		httpCase("Validation: bad client id -> 400", check{path: "/api/generate-itinerary", body: sampleTrip, header: map[string]string{"X-Client-ID": "bad id!"}, ok: []int{400}}),

		// Raw-text redelivery never reaches the model.
		httpCase("Redelivery: raw text as pdf", check{
			path:        "/api/generate-itinerary?format=pdf",
			body:        map[string]any{"destination": "São Paulo, Brazil", "rawText": "Day 1\nAvenida Paulista\n\nDay 2\nIbirapuera Park"},
			ok:          []int{200},
			contentType: "application/pdf",
		}),
		httpCase("Redelivery: raw text as text", check{
			path:        "/api/generate-itinerary?format=text",
			body:        map[string]any{"rawText": "Day 1\nWalk"},
			ok:          []int{200},
			contentType: "text/plain",
		}),
		httpCase("Redelivery: raw text as json -> 400", check{
			path: "/api/generate-itinerary?format=json",
			body: map[string]any{"rawText": "Day 1\nWalk"},
			ok:   []int{400},
		}),

		// History answers 503 when the server runs without a database.
		httpCase("History: unknown id", check{method: http.MethodGet, path: "/api/itineraries/00000000-0000-0000-0000-000000000000", ok: []int{404}, pending: []int{503}}),
		httpCase("History: list requires client", check{method: http.MethodGet, path: "/api/itineraries", ok: []int{400}, pending: []int{503}}),

		liveCase("Live: text itinerary", check{path: "/api/generate-itinerary?format=text", body: sampleTrip, ok: []int{200}, contentType: "text/plain"}),
		liveCase("Live: json itinerary", check{path: "/api/generate-itinerary?format=json", body: sampleTrip, ok: []int{200}, contentType: "application/json"}),
		liveCase("Live: pdf itinerary", check{path: "/api/generate-itinerary?format=pdf", body: sampleTrip, ok: []int{200}, contentType: "application/pdf"}),

		{
			Name:  "RateLimit: burst from one client",
			Focus: "per-client limiter returns 429 once the window is spent",
			Run:   rateLimitBurst,
		},
		{
			Name:  "Perf: raw-text pdf throughput",
			Focus: "document rendering without model calls",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, "/api/generate-itinerary?format=pdf", map[string]any{
					"destination": "Lisbon, Portugal",
					"rawText":     strings.Repeat("Day 1\nTram 28 through Alfama, pastel de nata in Belém.\n", 20),
				})
			},
		},
	}
}

func httpCase(name string, c check) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			return r.do(ctx, c)
		},
	}
}

func liveCase(name string, c check) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Model call",
		Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.Live {
				return Result{Status: "SKIP", Note: "live=false"}
			}
			return r.do(ctx, c)
		},
	}
}

func (r *Runner) do(ctx context.Context, c check) Result {
	method := c.method
	if method == "" {
		method = http.MethodPost
	}
	var reader io.Reader
	switch {
	case c.raw != "":
		reader = strings.NewReader(c.raw)
	case c.body != nil:
		b, _ := json.Marshal(c.body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+c.path, reader)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	latency := time.Since(start)

	note := fmt.Sprintf("status=%d", resp.StatusCode)
	if w := resp.Header.Get("X-Itinerary-Warnings"); w != "" {
		note += " warnings=" + w
	}
	switch {
	case contains(c.ok, resp.StatusCode):
		if c.contentType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), c.contentType) {
			return Result{Status: "FAIL", Latency: latency, Note: note + " content-type=" + resp.Header.Get("Content-Type")}
		}
		return Result{Status: "PASS", Latency: latency, Note: note}
	case contains(c.pending, resp.StatusCode):
		return Result{Status: "PENDING", Latency: latency, Note: note}
	default:
		return Result{Status: "FAIL", Latency: latency, Note: note}
	}
}

// rateLimitBurst sends raw-text requests so no model quota is spent.
func rateLimitBurst(ctx context.Context, r *Runner) Result {
	clientID := fmt.Sprintf("bench-%d", time.Now().UnixNano())
	body, _ := json.Marshal(map[string]any{"rawText": "Day 1\nWalk"})

	limited := 0
	for i := 0; i < 100; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/api/generate-itinerary?format=text", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", clientID)
		resp, err := r.httpc.Do(req)
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
			break
		}
	}
	if limited == 0 {
		return Result{Status: "PENDING", Note: "no 429 within 100 requests (limiter disabled?)"}
	}
	return Result{Status: "PASS"}
}

func perfLoad(ctx context.Context, r *Runner, path string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount, throttled int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			clientID := fmt.Sprintf("bench-perf-%d", worker)
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+path, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Client-ID", clientID)
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				if resp.StatusCode == http.StatusTooManyRequests {
					throttled++
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d throttled=%d", rps, errCount, throttled)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func migrationFiles(glob string) ([]string, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations match %s", glob)
	}
	sort.Strings(files)
	return files, nil
}

func extractTables(glob string) ([]string, error) {
	files, err := migrationFiles(glob)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range re.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
