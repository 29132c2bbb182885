package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/2beens/exercisetracker/internal/config"
	"github.com/2beens/exercisetracker/internal/db"
	"github.com/2beens/exercisetracker/internal/history"
	"github.com/2beens/exercisetracker/internal/middleware"
	"github.com/2beens/exercisetracker/pkg"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	integrationServerHost  = "127.0.0.1"
	integrationServerPort  = 9310
	integrationMetricsPort = "9311"
)

var integrationEndpoint = fmt.Sprintf("http://%s:%d", integrationServerHost, integrationServerPort)

// IntegrationTestSuite runs the whole service against real redis and
// postgres containers. Set TRACKER_DOCKER_TESTS=1 to run it.
type IntegrationTestSuite struct {
	suite.Suite

	dockerPool *dockertest.Pool
	server     *Server
	inference  *fakeInference
	httpClient *http.Client
	teardown   []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	if os.Getenv("TRACKER_DOCKER_TESTS") == "" {
		t.Skip("TRACKER_DOCKER_TESTS not set, skipping docker integration suite")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.teardown = make([]func(), 0)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	var err error
	s.dockerPool, err = dockertest.NewPool("")
	s.Require().NoError(err, "create dockertest pool")
	s.Require().NoError(s.dockerPool.Client.Ping(), "ping docker")
	s.dockerPool.MaxWait = time.Minute

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		s.FailNow("redis setup", err.Error())
	}

	pgPort, err := s.postgresSetup(ctx)
	if err != nil {
		s.cleanup()
		s.FailNow("postgres setup", err.Error())
	}

	s.inference = &fakeInference{}
	infServer := httptest.NewServer(s.inference.handler())
	s.teardown = append(s.teardown, infServer.Close)

	secretHash, err := pkg.HashSecret(testSecret, bcrypt.MinCost)
	s.Require().NoError(err)

	cfg := &config.Config{
		Environment:                 "development",
		Host:                        integrationServerHost,
		Port:                        integrationServerPort,
		LogLevel:                    "debug",
		InferenceURL:                infServer.URL,
		CapturePeriod:               config.Duration{Duration: 100 * time.Millisecond},
		CameraDevice:                "pattern",
		CameraWidth:                 64,
		CameraHeight:                48,
		JPEGQuality:                 60,
		RedisEnabled:                true,
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		OutcomeTTL:                  config.Duration{Duration: time.Minute},
		ResetRateLimitAllowedPerMin: 2,
		PostgresEnabled:             true,
		PostgresHost:                "localhost",
		PostgresPort:                pgPort,
		PostgresDBName:              "tracker",
		PostgresUser:                "postgres",
		PrometheusMetricsHost:       integrationServerHost,
		PrometheusMetricsPort:       integrationMetricsPort,
	}

	s.server, err = NewServer(ctx, NewServerParams{
		Config:           cfg,
		SecretHash:       secretHash,
		VersionInfo:      "integration",
		PostgresPassword: "postgres",
	})
	if err != nil {
		s.cleanup()
		s.FailNow("new server", err.Error())
	}

	s.server.Serve(ctx, cfg.Host, cfg.Port)

	s.Require().Eventually(func() bool {
		resp, err := s.httpClient.Get(integrationEndpoint + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond, "server did not come up")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(redisResource); err != nil {
			s.T().Logf("redis teardown: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=tracker",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(pgResource); err != nil {
			s.T().Logf("postgres teardown: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     "localhost",
		DBPort:     pgPort,
		DBName:     "tracker",
		DBUser:     "postgres",
		DBPassword: "postgres",
	})
	if err != nil {
		return "", err
	}
	defer pool.Close()

	if err := s.dockerPool.Retry(func() error {
		return pool.Ping(ctx)
	}); err != nil {
		return "", fmt.Errorf("connect to db: %w", err)
	}

	return pgPort, nil
}

func (s *IntegrationTestSuite) request(method, path string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, integrationEndpoint+path, nil)
	s.Require().NoError(err)
	req.Header.Set(middleware.SecretHeader, testSecret)

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *IntegrationTestSuite) TestSessionLifecycle() {
	resp, body := s.request(http.MethodPost, "/session/start")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.request(http.MethodPost, "/session/exercise/deadlift")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	// the real ticker runs every 100ms
	s.Require().Eventually(func() bool {
		return len(s.inference.sent()) >= 3
	}, 5*time.Second, 50*time.Millisecond)

	resp, body = s.request(http.MethodGet, "/session/outcome/latest")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	s.Contains(string(body), `"exercise":"deadlift"`)

	resp, body = s.request(http.MethodPost, "/session/stop")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	var listResp history.ListResponse
	s.Require().Eventually(func() bool {
		resp, body := s.request(http.MethodGet, "/history/page/1/size/10")
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(body, &listResp); err != nil {
			return false
		}
		return len(listResp.Events) >= 3
	}, 5*time.Second, 100*time.Millisecond)

	s.Equal(history.EventTypeSessionStopped, listResp.Events[0].Type)
	s.Equal(history.EventTypeExerciseSelected, listResp.Events[1].Type)
	s.Equal("deadlift", listResp.Events[1].Exercise)
	s.Equal(history.EventTypeSessionStarted, listResp.Events[2].Type)
}

func (s *IntegrationTestSuite) TestResetCounters_RateLimited() {
	resp, body := s.request(http.MethodPost, "/session/start")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	defer func() {
		resp, _ := s.request(http.MethodPost, "/session/stop")
		s.Equal(http.StatusOK, resp.StatusCode)
	}()

	for range 2 {
		resp, body = s.request(http.MethodPost, "/session/reset")
		s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body = s.request(http.MethodPost, "/session/reset")
	s.Require().Equal(http.StatusTooManyRequests, resp.StatusCode, string(body))
	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	s.Require().NoError(err)
	s.Positive(retryAfter)
	s.Equal(2, s.inference.resetCalls())
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	resp, err := s.httpClient.Get(fmt.Sprintf("http://%s:%s/metrics", integrationServerHost, integrationMetricsPort))
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "tracker_service_life_signal")
	s.Contains(string(body), "pgxpool_")
}
