package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/propmarket/apicore/internal/breaker"
	"github.com/propmarket/apicore/internal/client"
	"github.com/propmarket/apicore/internal/environment"
	"github.com/propmarket/apicore/internal/fallback"
	"github.com/propmarket/apicore/internal/types/environments"
	"github.com/propmarket/apicore/internal/utils/config"
	"github.com/propmarket/apicore/internal/utils/logger"
)

const (
	testTimeout    = 100 * time.Millisecond
	testRetryDelay = 10 * time.Millisecond
)

func testConfig(baseURL string, retryAttempts int) *config.AppConfig {
	return &config.AppConfig{
		Environment: environments.Test,
		API: config.APIConfig{
			BaseURLOverride:  baseURL,
			Timeout:          testTimeout,
			RetryAttempts:    retryAttempts,
			RetryDelay:       testRetryDelay,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			ProbeSchedule:    config.DefaultProbeSchedule,
		},
	}
}

var _ = Describe("Resilient Request Executor", func() {
	var (
		testLogger  *logger.Logger
		mockServers []*httptest.Server
		serverHost  = environment.HostContext{HasBrowsingContext: false}
	)

	newClient := func(baseURL string, retryAttempts int) (*client.Client, *breaker.Breaker) {
		cfg := testConfig(baseURL, retryAttempts)
		brk := breaker.New(cfg.API.BreakerThreshold, cfg.API.BreakerCooldown, testLogger)
		return client.New(cfg, serverHost, brk, testLogger, nil), brk
	}

	BeforeEach(func() {
		testLogger = logger.New(environments.Test)
	})

	AfterEach(func() {
		for _, server := range mockServers {
			if server != nil {
				server.Close()
			}
		}
		mockServers = nil
	})

	Context("Successful exchanges", func() {
		It("should decode a JSON body and report ok for 2xx", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/packages"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"success": true, "data": [{"id": 1, "name": "Gold"}]}`))
			}))
			mockServers = append(mockServers, server)

			c, brk := newClient(server.URL, 3)
			outcome := c.Request(context.Background(), "packages", nil)

			Expect(outcome.Status).To(Equal(200))
			Expect(outcome.OK).To(BeTrue())
			Expect(outcome.FromFallback).To(BeFalse())

			payload, isMap := outcome.Data.(map[string]any)
			Expect(isMap).To(BeTrue())
			Expect(payload["success"]).To(Equal(true))
			Expect(brk.FailureCount()).To(Equal(0))
		})

		It("should synthesize a message for an empty 200 body and record breaker success", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			mockServers = append(mockServers, server)

			c, brk := newClient(server.URL, 3)

			// A prior failure must be wiped by the completed exchange.
			brk.RecordFailure()

			outcome := c.Request(context.Background(), "health", nil)

			Expect(outcome.Status).To(Equal(200))
			Expect(outcome.OK).To(BeTrue())
			Expect(outcome.FromFallback).To(BeFalse())
			Expect(outcome.Data).To(Equal(map[string]any{"message": "Empty response"}))
			Expect(brk.FailureCount()).To(Equal(0))
		})

		It("should downgrade an unparseable body to a synthetic object", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>gateway page</html>"))
			}))
			mockServers = append(mockServers, server)

			c, _ := newClient(server.URL, 3)
			outcome := c.Request(context.Background(), "packages", nil)

			Expect(outcome.OK).To(BeTrue())
			Expect(outcome.Data).To(Equal(map[string]any{
				"success": true,
				"message": "<html>gateway page</html>",
			}))
		})

		It("should treat a non-2xx response as a completed exchange, not a failure", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success": false, "error": "invalid token"}`))
			}))
			mockServers = append(mockServers, server)

			c, brk := newClient(server.URL, 3)
			brk.RecordFailure()

			outcome := c.Request(context.Background(), "seller/dashboard", nil)

			Expect(outcome.Status).To(Equal(401))
			Expect(outcome.OK).To(BeFalse())
			Expect(outcome.FromFallback).To(BeFalse())
			Expect(brk.FailureCount()).To(Equal(0), "non-2xx still resets the breaker")

			payload := outcome.Data.(map[string]any)
			Expect(payload["error"]).To(Equal("invalid token"))
		})

		It("should not retry non-2xx responses", func() {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			mockServers = append(mockServers, server)

			c, _ := newClient(server.URL, 3)
			outcome := c.Request(context.Background(), "packages", nil)

			Expect(outcome.Status).To(Equal(500))
			Expect(atomic.LoadInt32(&hits)).To(Equal(int32(1)))
		})
	})

	Context("Convenience wrappers", func() {
		It("should send method, JSON body, and bearer token", func() {
			var (
				gotMethod string
				gotAuth   string
				gotCT     string
				gotBody   []byte
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotAuth = r.Header.Get("Authorization")
				gotCT = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				w.Write([]byte(`{"success": true}`))
			}))
			mockServers = append(mockServers, server)

			c, _ := newClient(server.URL, 3)
			outcome := c.Post(context.Background(), "packages", map[string]any{"name": "Gold"}, "tok-123")

			Expect(outcome.OK).To(BeTrue())
			Expect(gotMethod).To(Equal(http.MethodPost))
			Expect(gotAuth).To(Equal("Bearer tok-123"))
			Expect(gotCT).To(Equal("application/json"))
			Expect(string(gotBody)).To(MatchJSON(`{"name": "Gold"}`))
		})

		It("should omit the Authorization header when no token is supplied", func() {
			var gotAuth string
			var hasAuth bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				_, hasAuth = r.Header["Authorization"]
				w.Write([]byte(`{}`))
			}))
			mockServers = append(mockServers, server)

			c, _ := newClient(server.URL, 3)
			c.Get(context.Background(), "properties", "")

			Expect(hasAuth).To(BeFalse())
			Expect(gotAuth).To(BeEmpty())
		})
	})

	Context("Retries and fallback", func() {
		It("should attempt exactly retryAttempts+1 times against a timing-out endpoint", func() {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				time.Sleep(5 * testTimeout)
			}))
			mockServers = append(mockServers, server)

			c, brk := newClient(server.URL, 2)
			outcome := c.Request(context.Background(), "properties", nil)

			Expect(atomic.LoadInt32(&hits)).To(Equal(int32(3)))
			Expect(outcome.FromFallback).To(BeTrue())
			Expect(outcome.Status).To(Equal(0))
			Expect(outcome.OK).To(BeFalse())
			Expect(brk.FailureCount()).To(Equal(3), "one breaker failure per terminal attempt")
		})

		It("should serve the seeded categories when the network is fully down", func() {
			// A server that is already closed yields connection refused.
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			deadURL := server.URL
			server.Close()

			c, _ := newClient(deadURL, 1)
			outcome := c.Request(context.Background(), "categories", nil)

			Expect(outcome.Status).To(Equal(0))
			Expect(outcome.OK).To(BeFalse())
			Expect(outcome.FromFallback).To(BeTrue())
			Expect(outcome.Data).To(Equal(fallback.DataFor("categories")))

			payload := outcome.Data.(map[string]any)
			Expect(payload["success"]).To(Equal(true))
			Expect(payload["data"]).To(HaveLen(3))
			Expect(payload["fromFallback"]).To(Equal(true))
		})
	})

	Context("Circuit breaker short-circuit", func() {
		It("should return 503 with fallback data and no network call when open", func() {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.Write([]byte(`{}`))
			}))
			mockServers = append(mockServers, server)

			c, brk := newClient(server.URL, 3)
			for i := 0; i < 5; i++ {
				brk.RecordFailure()
			}
			Expect(brk.IsOpen()).To(BeTrue())

			start := time.Now()
			outcome := c.Request(context.Background(), "packages", nil)
			elapsed := time.Since(start)

			Expect(outcome.Status).To(Equal(503))
			Expect(outcome.OK).To(BeFalse())
			Expect(outcome.FromFallback).To(BeTrue())
			Expect(atomic.LoadInt32(&hits)).To(Equal(int32(0)), "no network call while open")
			Expect(elapsed).To(BeNumerically("<", testTimeout), "short-circuit must not wait on a timeout")
		})

		It("should open after sustained failures and short-circuit the next call", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			deadURL := server.URL
			server.Close()

			// 5 terminal attempts inside the cooldown window.
			c, brk := newClient(deadURL, 4)
			c.Request(context.Background(), "packages", nil)

			Expect(brk.FailureCount()).To(Equal(5))
			Expect(brk.IsOpen()).To(BeTrue())

			outcome := c.Request(context.Background(), "packages", nil)
			Expect(outcome.Status).To(Equal(503))
			Expect(outcome.FromFallback).To(BeTrue())
		})
	})
})
