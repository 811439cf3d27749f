package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/ardiland/ardilandcom/internal/auth"
	"github.com/ardiland/ardilandcom/internal/cache"
	"github.com/ardiland/ardilandcom/internal/config"
	"github.com/ardiland/ardilandcom/internal/db"
	"github.com/ardiland/ardilandcom/internal/essays"
	"github.com/ardiland/ardilandcom/internal/health"
	"github.com/ardiland/ardilandcom/internal/messages"
	"github.com/ardiland/ardilandcom/internal/middleware"
	"github.com/ardiland/ardilandcom/internal/products"
	"github.com/ardiland/ardilandcom/internal/telemetry/metrics"
	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	authService  *auth.Service
	contentCache *cache.ContentCache

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	promRegistry := metrics.SetupPrometheus()
	if err := metrics.RegisterDBPoolCollector(promRegistry, dbPool, cfg.PostgresDBName); err != nil {
		return nil, fmt.Errorf("register db pool collector: %w", err)
	}
	metricsManager := metrics.NewManager("ardiland", "api", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "ardiland-api", rdb)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(
		auth.NewAdminRepo(dbPool),
		auth.NewSessionRepo(dbPool),
		cfg.SessionTTL.Duration,
	)

	return &Server{
		config:       cfg,
		dbPool:       dbPool,
		redisClient:  rdb,
		authService:  authService,
		contentCache: cache.NewContentCache(cfg.ContentCacheSizeMB, cfg.ContentCacheTTL.Duration),
		versionInfo:  params.VersionInfo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

type routerParams struct {
	authHandler     *auth.Handler
	productsHandler *products.Handler
	essaysHandler   *essays.Handler
	messagesHandler *messages.Handler
	healthHandler   *health.Handler
	authGate        *middleware.AuthMiddlewareHandler

	loginLimiter         middleware.RequestRateLimiter
	loginRateLimitPerMin int
	allowedOrigins       []string
	metricsManager       *metrics.Manager
}

func (s *Server) routerSetup() http.Handler {
	var loginLimiter middleware.RequestRateLimiter
	if s.config.LoginRateLimitAllowedPerMin > 0 {
		loginLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	return newRouter(routerParams{
		authHandler:     auth.NewHandler(s.authService, s.metricsManager),
		productsHandler: products.NewHandler(products.NewRepo(s.dbPool), s.contentCache),
		essaysHandler: essays.NewHandler(
			essays.NewRepo(s.dbPool),
			essays.NewContentRenderer(),
			s.contentCache,
		),
		messagesHandler: messages.NewHandler(messages.NewRepo(s.dbPool), s.metricsManager),
		healthHandler:   health.NewHandler(s.dbPool, s.redisClient, s.versionInfo),
		authGate:        middleware.NewAuthMiddlewareHandler(s.authService),

		loginLimiter:         loginLimiter,
		loginRateLimitPerMin: s.config.LoginRateLimitAllowedPerMin,
		allowedOrigins:       s.config.AllowedOrigins,
		metricsManager:       s.metricsManager,
	})
}

func newRouter(params routerParams) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	r.Use(otelmux.Middleware("ardiland-router"))
	r.Use(middleware.PanicRecovery(params.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(params.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	params.healthHandler.SetupRoutes(r)

	apiRouter := r.PathPrefix("/api").Subrouter()
	authGate := params.authGate.AuthCheck()

	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(authGate)

	params.authHandler.SetupRoutes(
		apiRouter,
		authGate,
		middleware.RateLimit(params.loginLimiter, "login", params.loginRateLimitPerMin, params.metricsManager),
	)
	params.productsHandler.SetupRoutes(apiRouter, adminRouter)
	params.essaysHandler.SetupRoutes(apiRouter, adminRouter)
	params.messagesHandler.SetupRoutes(apiRouter, adminRouter)

	// unknown admin paths still go through the gate, so they answer 401 before 404.
	// the prefix route alone does not match the bare /api/admin
	adminRouter.Path("").HandlerFunc(handleNotFound).Name("admin-root")
	adminRouter.PathPrefix("/").HandlerFunc(handleNotFound).Name("admin-unknown")

	// mux middlewares only run on matched routes, preflight requests must be answered before routing
	return middleware.Cors(params.allowedOrigins)(r)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	log.Tracef("route not found: %s %s", r.Method, r.URL.Path)
	pkg.WriteNotFound(w, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	pkg.WriteError(
		w,
		http.StatusMethodNotAllowed,
		pkg.ErrLabelMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
	)
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
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

	// expired sessions are removed lazily on lookup; the sweeper only keeps the table small
	go s.authService.RunSweeper(
		ctx,
		s.config.SessionSweepInterval.Duration,
		s.metricsManager.CounterExpiredSessionsSwept,
	)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before closing what the handlers use
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
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

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}
}
