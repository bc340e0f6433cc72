package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Viveksharma8542/healthalert-app/internal/alert"
	"github.com/Viveksharma8542/healthalert-app/internal/analytics"
	"github.com/Viveksharma8542/healthalert-app/internal/api"
	"github.com/Viveksharma8542/healthalert-app/internal/circuitbreaker"
	"github.com/Viveksharma8542/healthalert-app/internal/config"
	"github.com/Viveksharma8542/healthalert-app/internal/domain"
	"github.com/Viveksharma8542/healthalert-app/internal/history"
	"github.com/Viveksharma8542/healthalert-app/internal/metrics"
	"github.com/Viveksharma8542/healthalert-app/internal/notifier"
	"github.com/Viveksharma8542/healthalert-app/internal/poller"
	"github.com/Viveksharma8542/healthalert-app/internal/store/postgres"
	"github.com/Viveksharma8542/healthalert-app/internal/transport/channel"

	_ "github.com/lib/pq"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`healthalert - medicine reminder and caretaker alert engine

Usage:
  healthalert <command>

Commands:
  serve      Start the reminder poller and HTTP API
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  DATABASE_URL               PostgreSQL connection string (required)
  REDIS_ADDR                 Redis address for adherence analytics (optional)
  HTTP_ADDR                  HTTP server address (default: ":8080")
  POLL_INTERVAL              Reminder poll interval (default: "60s")
  TOLERANCE_WINDOW           Due-reminder tolerance window (default: "5m")
  SNOOZE_DEFAULT             Default snooze duration (default: "10m")

  DB_OP_TIMEOUT              Database operation timeout (default: "5s")
  DB_MAX_OPEN_CONNS          Max open database connections (default: "25")
  DB_MAX_IDLE_CONNS          Max idle database connections (default: "5")
  DB_CONN_MAX_LIFETIME       Max connection lifetime (default: "30m")
  DB_CONN_MAX_IDLE_TIME      Max connection idle time (default: "5m")

  HTTP_SHUTDOWN_TIMEOUT      Graceful HTTP shutdown timeout (default: "10s")
  NOTIFIER_DRAIN_TIMEOUT     Notifier event drain timeout (default: "30s")
  EVENTBUS_BUFFER_SIZE       Alert event buffer size (default: "100")

  METRICS_ENABLED            Enable Prometheus metrics (default: "false")
  METRICS_PATH               Metrics endpoint path (default: "/metrics")

  CARETAKER_WEBHOOK_URL      Caretaker webhook endpoint (optional, stub mode if unset)
  CARETAKER_WEBHOOK_SECRET   HMAC signing secret for webhook deliveries
  CARETAKER_WEBHOOK_TIMEOUT  Per-delivery timeout (default: "10s")
  CIRCUIT_BREAKER_THRESHOLD  Failures before the breaker opens, 0 disables (default: "5")
  CIRCUIT_BREAKER_COOLDOWN   Breaker open duration (default: "2m")

  HISTORY_RETENTION          Persisted history retention (default: "2160h")
  HISTORY_PRUNE_SCHEDULE     Cron schedule for history pruning (default: "0 3 * * *")
  HISTORY_MEMORY_LIMIT       In-memory history entries (default: "500")`)
}

// contactStore is the slice of the store the contact seeder needs.
type contactStore interface {
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	CreateContact(ctx context.Context, c domain.Contact) error
}

// defaultContacts returns the out-of-the-box emergency contact set.
// Placeholder doctor and family entries are meant to be edited;
// the service numbers are India's emergency lines.
func defaultContacts() []domain.Contact {
	return []domain.Contact{
		{ID: uuid.New(), Name: "Dr. Sharma", Phone: "+91-98765-43210", Relationship: "Primary Doctor", Email: "dr.sharma@clinic.com"},
		{ID: uuid.New(), Name: "Family Member", Phone: "+91-98765-43211", Relationship: "Son/Daughter", Email: "family@example.com"},
		{ID: uuid.New(), Name: "Police Emergency", Phone: "100", Relationship: "Emergency Services"},
		{ID: uuid.New(), Name: "Fire Emergency", Phone: "101", Relationship: "Emergency Services"},
		{ID: uuid.New(), Name: "Ambulance", Phone: "108", Relationship: "Emergency Services"},
	}
}

// seedDefaultContacts installs the default contact set on a fresh
// database. A non-empty contacts table is left alone, so user edits
// and deletions survive restarts.
func seedDefaultContacts(ctx context.Context, store contactStore) (int, error) {
	existing, err := store.ListContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list contacts: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, c := range defaultContacts() {
		if err := store.CreateContact(ctx, c); err != nil {
			return seeded, fmt.Errorf("create contact %s: %w", c.Name, err)
		}
		seeded++
	}
	return seeded, nil
}

// logConfigWarnings flags configurations that run but degrade the
// caretaker experience.
func logConfigWarnings(cfg config.Config) {
	if cfg.CaretakerWebhookURL == "" {
		log.Println("WARNING [P0]: CARETAKER_WEBHOOK_URL not set. Missed doses are logged locally " +
			"but no caretaker is notified. Set CARETAKER_WEBHOOK_URL for real deliveries.")
	}
	if !cfg.MetricsEnabled {
		log.Println("WARNING [P1]: METRICS_ENABLED=false. Missed deliveries and poller stalls " +
			"will be invisible. Strongly recommended for production.")
	}
	if cfg.RedisAddr == "" {
		log.Println("INFO: REDIS_ADDR not set; adherence analytics disabled.")
	}
	if cfg.CaretakerWebhookURL != "" && cfg.CircuitBreakerThreshold == 0 {
		log.Println("INFO: CIRCUIT_BREAKER_THRESHOLD=0; a flapping caretaker endpoint will be retried indefinitely.")
	}
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	logConfigWarnings(cfg)

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return exitRuntimeError
	}
	defer db.Close()

	// Configure connection pool
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	log.Printf("healthalert: db pool configured (max_open=%d, max_idle=%d, max_lifetime=%s, max_idle_time=%s)",
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		return exitRuntimeError
	}

	store := postgres.New(db)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), cfg.DBOpTimeout)
	if n, err := seedDefaultContacts(seedCtx, store); err != nil {
		log.Printf("healthalert: contact seeding failed: %v", err)
	} else if n > 0 {
		log.Printf("healthalert: seeded %d default contacts", n)
	}
	seedCancel()

	// Initialize metrics sink (optional)
	var metricsSink *metrics.PrometheusSink
	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		log.Printf("healthalert: metrics enabled (path=%s)", cfg.MetricsPath)
	}

	// Create event bus with optional metrics
	var busOpts []channel.Option
	if metricsSink != nil {
		busOpts = append(busOpts, channel.WithMetrics(metricsSink))
	}
	bus := channel.NewEventBus(cfg.EventBusBufferSize, busOpts...)

	// Dose history: bounded in-memory view backed by the database,
	// pruned on a cron schedule.
	recorder := history.NewRecorder(cfg.HistoryMemoryLimit).WithStore(store)
	pruner, err := history.NewPruner(history.PrunerConfig{
		Schedule:  cfg.HistoryPruneSchedule,
		Retention: cfg.HistoryRetention,
		OpTimeout: cfg.DBOpTimeout,
	}, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create history pruner: %v\n", err)
		return exitInvalidConfig
	}
	pruner.Start()

	// Warm the history view with persisted entries from earlier runs.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.DBOpTimeout)
	if entries, err := store.ListHistoryEntries(warmCtx, cfg.HistoryMemoryLimit); err != nil {
		log.Printf("healthalert: history warm-up failed: %v", err)
	} else if len(entries) > 0 {
		recorder.Preload(entries)
		log.Printf("healthalert: history warmed with %d entries", len(entries))
	}
	warmCancel()

	manager := alert.New(bus, recorder)
	if metricsSink != nil {
		manager = manager.WithMetrics(metricsSink)
	}

	// Restore the alert snapshot from the previous run so doses
	// already acknowledged today are not re-fired.
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), cfg.DBOpTimeout)
	savedAlerts, savedResolved, err := store.LoadAlertSnapshot(restoreCtx)
	restoreCancel()
	if err != nil {
		log.Printf("healthalert: alert snapshot load failed, starting fresh: %v", err)
	} else if len(savedAlerts) > 0 || len(savedResolved) > 0 {
		manager.Restore(savedAlerts, savedResolved, time.Now())
	}

	pol := poller.New(poller.Config{
		Interval:  cfg.PollInterval,
		Tolerance: cfg.ToleranceWindow,
	}, store, manager)
	if metricsSink != nil {
		pol = pol.WithMetrics(metricsSink)
	}

	notif := notifier.New(notifier.Config{
		WebhookURL:   cfg.CaretakerWebhookURL,
		Secret:       cfg.CaretakerWebhookSecret,
		Timeout:      cfg.CaretakerWebhookTimeout,
		DrainTimeout: cfg.NotifierDrainTimeout,
	}, notifier.NewHTTPWebhookSender())
	if cfg.CircuitBreakerThreshold > 0 {
		notif = notif.WithBreaker(circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown))
	}
	if metricsSink != nil {
		notif = notif.WithMetrics(metricsSink)
	}

	// Wire adherence analytics if Redis is configured
	var redisSink *analytics.RedisSink
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		redisSink = analytics.NewRedisSink(redisClient)
		notif = notif.WithAnalytics(redisSink)
		log.Printf("healthalert: adherence analytics enabled (redis=%s)", cfg.RedisAddr)
	}

	apiHandler := api.NewHandler(store, manager, recorder, cfg.SnoozeDefault).
		WithNotifier(notif).
		WithHealthChecker(db)
	if redisSink != nil {
		apiHandler = apiHandler.WithAdherence(redisSink)
	}

	var rootHandler http.Handler = apiHandler.Routes()
	if metricsSink != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
		mux.Handle("/", rootHandler)
		rootHandler = mux
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rootHandler,
	}

	go func() {
		log.Printf("healthalert: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("healthalert: http server error: %v", err)
		}
	}()

	// Separate contexts for the poller and notifier enable ordered
	// shutdown: stop firing first, then drain deliveries.
	pollerCtx, cancelPoller := context.WithCancel(context.Background())
	notifierCtx, cancelNotifier := context.WithCancel(context.Background())

	var pollerWg sync.WaitGroup
	var notifierWg sync.WaitGroup

	pollerWg.Add(1)
	go func() {
		defer pollerWg.Done()
		if err := pol.Run(pollerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("healthalert: poller error: %v", err)
		}
	}()

	notifierWg.Add(1)
	go func() {
		defer notifierWg.Done()
		notif.Run(notifierCtx, bus.Channel())
	}()

	log.Printf("healthalert: started (poll=%s, tolerance=%s, http=%s)",
		cfg.PollInterval, cfg.ToleranceWindow, cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("healthalert: received signal %v, shutting down", received)

	// Phase 1: Stop poller (no new alerts fired)
	log.Println("healthalert: stopping poller...")
	cancelPoller()
	pollerWg.Wait()
	log.Println("healthalert: poller stopped")

	// Phase 2: Stop notifier (drains buffered events before returning)
	log.Println("healthalert: stopping notifier (draining events)...")
	cancelNotifier()
	notifierWg.Wait()
	log.Println("healthalert: notifier stopped")

	// Phase 3: Stop HTTP server with graceful shutdown
	log.Println("healthalert: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("healthalert: http server shutdown error: %v", err)
	}
	log.Println("healthalert: http server stopped")

	// Phase 4: Stop the history pruner
	pruner.Stop()

	// Phase 5: Persist the alert snapshot for the next run
	alerts, resolved := manager.Snapshot()
	saveCtx, saveCancel := context.WithTimeout(context.Background(), cfg.DBOpTimeout)
	defer saveCancel()
	if err := store.SaveAlertSnapshot(saveCtx, alerts, resolved); err != nil {
		log.Printf("healthalert: alert snapshot save failed: %v", err)
	} else {
		log.Printf("healthalert: alert snapshot saved (%d alerts, %d resolved keys)", len(alerts), len(resolved))
	}

	log.Println("healthalert: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("healthalert version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
