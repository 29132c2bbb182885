package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/exercisetracker/internal/camera"
	"github.com/2beens/exercisetracker/internal/config"
	"github.com/2beens/exercisetracker/internal/db"
	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/history"
	"github.com/2beens/exercisetracker/internal/inference"
	"github.com/2beens/exercisetracker/internal/middleware"
	"github.com/2beens/exercisetracker/internal/misc"
	"github.com/2beens/exercisetracker/internal/results"
	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/internal/tracker"
)

const serviceName = "exercise-tracker"

type outcomeStore interface {
	results.Sink
	Latest(ctx context.Context) (*results.Outcome, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	secretChecker *middleware.SecretChecker
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client

	controller  *tracker.Controller
	hub         *results.Hub
	outcomes    outcomeStore
	historyRepo *history.Repo
	recorder    *history.Recorder

	stopRecorder context.CancelFunc
	recorderDone chan struct{}
	shutdownOnce sync.Once

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	SecretHash              string
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool

	// overrides the camera backend picked from the config, used in tests
	CameraDevice camera.Device
	// overrides the time based capture ticker, used in tests
	NewTicker tracker.TickerFactory
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:        cfg,
		versionInfo:   params.VersionInfo,
		secretChecker: middleware.NewSecretChecker(params.SecretHash),
		otelShutdown:  otelShutdown,
	}

	var collectors []prometheus.Collector
	if cfg.PostgresEnabled {
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			otelShutdown()
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		s.dbPool = dbPool
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}

	s.promRegistry = metrics.SetupPrometheus(collectors...)
	s.metricsManager = metrics.NewManager("tracker", "service", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	if cfg.RedisEnabled {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			s.redisClient.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		s.outcomes = results.NewRedisStore(s.redisClient, cfg.OutcomeTTL.Duration)
	} else {
		log.Debugln("redis disabled, keeping latest outcome in memory")
		s.outcomes = results.NewMemoryStore(cfg.OutcomeTTL.Duration)
	}

	var listener tracker.TransitionListener
	if s.dbPool != nil {
		s.historyRepo = history.NewRepo(s.dbPool)
		if err := s.historyRepo.Migrate(ctx); err != nil {
			log.Errorf("session history schema setup: %s", err)
		}
		s.recorder = history.NewRecorder(s.historyRepo, history.DefaultRecorderBuffer, s.metricsManager)
		listener = s.recorder
	}

	s.hub = results.NewHub(results.HubParams{
		AllowedOrigins: cfg.AllowedOrigins,
		OnEmpty:        s.onLastViewerLeft,
		Metrics:        s.metricsManager,
	})

	device := params.CameraDevice
	if device == nil {
		device = cameraDevice(cfg)
	}

	s.controller = tracker.NewController(tracker.ControllerParams{
		Camera:    camera.NewResource(device),
		Sampler:   camera.NewSampler(cfg.JPEGQuality, cfg.MaxFrameWidth),
		Inference: inference.NewClient(cfg.InferenceURL, nil),
		Sink:      results.MultiSink{s.hub, s.outcomes},
		Listener:  listener,
		Metrics:   s.metricsManager,
		Period:    cfg.CapturePeriod.Duration,
		NewTicker: params.NewTicker,
	})

	return s, nil
}

func cameraDevice(cfg *config.Config) camera.Device {
	switch cfg.CameraDevice {
	case "v4l2":
		log.Infof("using v4l2 camera [%s] %dx%d", cfg.CameraPath, cfg.CameraWidth, cfg.CameraHeight)
		return camera.NewV4L2Device(cfg.CameraPath, cfg.CameraWidth, cfg.CameraHeight)
	default:
		log.Infof("using test pattern camera %dx%d", cfg.CameraWidth, cfg.CameraHeight)
		return camera.NewPatternDevice(cfg.CameraWidth, cfg.CameraHeight)
	}
}

// onLastViewerLeft is the navigation away teardown: with no one watching
// the session is stopped.
func (s *Server) onLastViewerLeft() {
	if !s.config.StopOnViewerLeave {
		return
	}
	if s.controller.Status().State == tracker.StateIdle {
		return
	}
	log.Infoln("last live viewer left, stopping session")
	if err := s.controller.Stop(); err != nil {
		log.Errorf("stop session after viewers left: %s", err)
	}
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("tracker-router"))

	miscHandler := misc.NewHandler(s.versionInfo)
	r.HandleFunc("/", miscHandler.HandleRoot).Methods("GET").Name("root")
	r.HandleFunc("/version", miscHandler.HandleVersion).Methods("GET").Name("version")

	exercisesHandler := exercises.NewHandler()
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")

	trackerHandler := tracker.NewHandler(s.controller, s.outcomes)
	r.HandleFunc("/session", trackerHandler.HandleStatus).Methods("GET", "OPTIONS").Name("session-status")
	r.HandleFunc("/session/start", trackerHandler.HandleStart).Methods("POST", "OPTIONS").Name("session-start")
	r.HandleFunc("/session/stop", trackerHandler.HandleStop).Methods("POST", "OPTIONS").Name("session-stop")
	r.HandleFunc("/session/exercise/{id}", trackerHandler.HandleSelectExercise).Methods("POST", "OPTIONS").Name("session-exercise")
	r.HandleFunc("/session/outcome/latest", trackerHandler.HandleLatestOutcome).Methods("GET", "OPTIONS").Name("session-outcome")
	r.HandleFunc("/session/live", s.hub.HandleLive).Methods("GET").Name("session-live")

	var resetHandler http.Handler = http.HandlerFunc(trackerHandler.HandleResetCounters)
	if s.redisClient != nil {
		// the inference service keeps the counters, hammering it helps no one
		resetHandler = middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			"session-reset",
			s.config.ResetRateLimitAllowedPerMin,
			s.metricsManager,
		)(resetHandler)
	}
	r.Handle("/session/reset", resetHandler).Methods("POST", "OPTIONS").Name("session-reset")

	if s.historyRepo != nil {
		historyHandler := history.NewHandler(s.historyRepo)
		r.HandleFunc("/history/page/{page}/size/{size}", historyHandler.HandleList).Methods("GET", "OPTIONS").Name("list-history")
	}

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(s.secretChecker.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:     router,
		Addr:        ipAndPort,
		ReadTimeout: time.Minute,
		// no write timeout, live viewers keep their connection open
		ConnState: s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	if s.recorder != nil {
		recorderCtx, stopRecorder := context.WithCancel(context.WithoutCancel(ctx))
		s.stopRecorder = stopRecorder
		s.recorderDone = make(chan struct{})
		go func() {
			defer close(s.recorderDone)
			s.recorder.Run(recorderCtx)
		}()
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown stops the running session before anything else goes away,
// so the camera is always released.
func (s *Server) GracefulShutdown() {
	s.shutdownOnce.Do(s.shutdown)
}

func (s *Server) shutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if err := s.hub.Close(ctx); err != nil {
		log.Errorf("close live viewers hub: %s", err)
	}

	if err := s.controller.Close(ctx); err != nil {
		log.Errorf("close session controller: %s", err)
	}
	log.Debugln("session controller closed")

	if s.stopRecorder != nil {
		s.stopRecorder()
		<-s.recorderDone
		log.Trace("history recorder stopped ...")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
