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

	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/config"
	"github.com/soodoh/openfit/internal/dashboard"
	"github.com/soodoh/openfit/internal/db"
	"github.com/soodoh/openfit/internal/middleware"
	"github.com/soodoh/openfit/internal/search"
	"github.com/soodoh/openfit/internal/telemetry/metrics"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/internal/workouts"
	"github.com/soodoh/openfit/pkg"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter
	checker     auth.Checker
	authService *auth.Service
	users       auth.Users

	workoutsStore    workouts.Store
	workoutsService  *workouts.Service
	catalogService   *catalog.Service
	searchEngine     *search.Engine
	dashboardService *dashboard.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	VersionInfo string
}

// Services are the domain services a server routes to. They are built by
// NewServer from the configured backends.
type Services struct {
	Users         auth.Users
	WorkoutsStore workouts.Store
	CatalogStore  catalog.Store
}

func NewServer(ctx context.Context, params NewServerParams) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("openfit", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	}

	otelShutdown, err := tracing.HoneycombSetup(cfg.HoneycombEnabled, "openfit-backend", rdb)
	if err != nil {
		return nil, err
	}

	var (
		dbPool   *pgxpool.Pool
		services Services
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warnln("using the in-memory store, data is lost on restart")
		services = Services{
			Users:         auth.NewMemUsers(),
			WorkoutsStore: workouts.NewMemStore(),
			CatalogStore:  catalog.NewMemStore(),
		}
	default:
		poolParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     cfg.PostgresPassword,
			MaxConns:       cfg.PostgresMaxCon,
			TracingEnabled: cfg.HoneycombEnabled,
		}
		if cfg.MigrateOnStart {
			if err := db.MigrateUp(poolParams.ConnString()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		dbPool, err = db.NewDBPool(ctx, poolParams)
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := metrics.RegisterDBPool(promRegistry, dbPool, cfg.PostgresDBName); err != nil {
			log.Warnf("register db pool metrics: %s", err)
		}
		services = Services{
			Users:         auth.NewUsersRepo(dbPool),
			WorkoutsStore: workouts.NewPsqlStore(dbPool),
			CatalogStore:  catalog.NewRepo(dbPool),
		}
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	s := newServer(cfg, services, metricsManager)
	s.versionInfo = params.VersionInfo
	s.dbPool = dbPool
	s.redisClient = rdb
	s.rateLimiter = redis_rate.NewLimiter(rdb)
	s.checker = auth.NewLoginChecker(ttl, rdb)
	s.authService = auth.NewService(services.Users, ttl, rdb)
	s.promRegistry = promRegistry
	s.otelShutdown = otelShutdown

	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.authService.ScanAndClean(ctx, now)
			}
		}
	}()

	return s, nil
}

// newServer wires the domain services. Auth, the rate limiter and telemetry
// are left to the caller.
func newServer(cfg *config.Config, services Services, metricsManager *metrics.Manager) *Server {
	catalogService := catalog.NewService(services.CatalogStore)
	workoutsService := workouts.NewService(
		services.WorkoutsStore,
		catalogService,
		workouts.WithMetrics(metricsManager),
	)
	return &Server{
		config:           cfg,
		users:            services.Users,
		workoutsStore:    services.WorkoutsStore,
		workoutsService:  workoutsService,
		catalogService:   catalogService,
		searchEngine:     search.NewEngine(services.CatalogStore, workoutsService, metricsManager),
		dashboardService: dashboard.NewService(services.WorkoutsStore),
		metricsManager:   metricsManager,
		otelShutdown:     func() {},
	}
}

// CatalogService is used to seed the catalog at startup.
func (s *Server) CatalogService() *catalog.Service {
	return s.catalogService
}

func isLoginPath(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path == "/auth/login" || r.URL.Path == "/auth/logout"
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("openfit-router"))

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSON(w, map[string]string{"version": s.versionInfo}, http.StatusOK)
	}).Methods("GET", "OPTIONS")

	login := r.MatcherFunc(isLoginPath).Subrouter()
	if s.rateLimiter != nil {
		login.Use(middleware.RateLimit(s.rateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager))
	}
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly())

	if s.authService != nil {
		auth.NewHandler(s.authService, s.users).RegisterRoutes(login, r)
	}
	catalog.NewHandler(s.catalogService).RegisterRoutes(r, admin)
	workouts.NewHandler(s.workoutsService).RegisterRoutes(r)
	search.NewHandler(s.searchEngine).RegisterRoutes(r)
	dashboard.NewHandler(s.dashboardService, time.Now).RegisterRoutes(r)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.NewAuthMiddlewareHandler(s.checker).AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
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

func (s *Server) GracefulShutdown() {
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
		s.dbPool.Close()
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
