package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finquestAPI/handlers"
	"finquestAPI/internal/goal"
	"finquestAPI/internal/push"
	"finquestAPI/middleware"
	"finquestAPI/repository/postgres"
	"finquestAPI/services"
)

var (
	dbPool             *pgxpool.Pool
	goalEngine         *services.GoalEngine
	phaseGate          *services.PhaseGate
	credentialService  *services.CredentialService
	celebrationService *services.CelebrationService
	repairService      *services.RepairService
	progressStore      *postgres.ProgressStore
	badgeLedger        *postgres.BadgeLedger
	userDirectory      *postgres.UserDirectory
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)

	signingSecret := os.Getenv("CREDENTIAL_SIGNING_SECRET")
	if signingSecret == "" {
		log.Fatal("CREDENTIAL_SIGNING_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}
	log.Println("Successfully connected to Postgres")

	eventLog := postgres.NewEventLog(dbPool)
	progressStore = postgres.NewProgressStore(dbPool)
	badgeLedger = postgres.NewBadgeLedger(dbPool)
	celebrationStore := postgres.NewCelebrationStore(dbPool)
	credentialStore := postgres.NewCredentialStore(dbPool)
	userDirectory = postgres.NewUserDirectory(dbPool)
	financeReader := postgres.NewFinanceReader(dbPool)

	evaluator := services.NewEvaluatorRegistry(eventLog, financeReader, progressStore)

	// New criteria kinds must land in the registry before they can ship in
	// the catalog; refuse to boot otherwise.
	if err := goal.ValidateCatalog(goal.Catalog, evaluator.KnownKinds()); err != nil {
		log.Fatal("Goal catalog validation failed: ", err)
	}

	credentialService, err = services.NewCredentialService(credentialStore, services.CredentialConfig{
		SigningSecret: []byte(signingSecret),
		NumberPrefix:  envOrDefault("CREDENTIAL_NUMBER_PREFIX", "FQ"),
		IssuerName:    envOrDefault("ISSUER_NAME", "FinQuest"),
		IssuerURL:     envOrDefault("ISSUER_URL", "https://finquest.app/verify"),
	})
	if err != nil {
		log.Fatal("Failed to initialize credential issuer: ", err)
	}

	celebrationService = services.NewCelebrationService(celebrationStore, userDirectory)
	phaseGate = services.NewPhaseGate(progressStore)
	repairService = services.NewRepairService(badgeLedger, credentialService, userDirectory)
	goalEngine = services.NewGoalEngine(eventLog, progressStore, badgeLedger, userDirectory, evaluator, credentialService, celebrationService)

	if fcmService, err := push.NewFCMService("./serviceAccountKey.json"); err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		celebrationService.SetPushProvider(fcmService)
		log.Println("FCM push provider initialized")
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		celebrationService.Stop()
		dbPool.Close()
	}()

	eventHandler := handlers.NewEventHandler(goalEngine, userDirectory)
	goalHandler := handlers.NewGoalHandler(progressStore, badgeLedger, userDirectory, phaseGate)
	celebrationHandler := handlers.NewCelebrationHandler(celebrationService, userDirectory)
	credentialHandler := handlers.NewCredentialHandler(credentialService, repairService, userDirectory)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "finquest-api"}`))
	}).Methods("GET")

	// Public credential verification: anyone holding a credential number can
	// check it, no account needed.
	r.HandleFunc("/verify/{number}", credentialHandler.Verify).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/goals", goalHandler.GetGoalsByPhase).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/events", eventHandler.RecordEvent).Methods("POST")

	protected.HandleFunc("/goals/progress", goalHandler.GetUserProgress).Methods("GET")
	protected.HandleFunc("/goals/badges", goalHandler.GetUserBadges).Methods("GET")
	protected.HandleFunc("/goals/phases", goalHandler.GetPhaseUnlockStatus).Methods("GET")

	protected.HandleFunc("/celebrations", celebrationHandler.GetPending).Methods("GET")
	protected.HandleFunc("/celebrations/{id}/shown", celebrationHandler.MarkShown).Methods("PUT")

	protected.HandleFunc("/credentials", credentialHandler.GetUserCredentials).Methods("GET")
	protected.HandleFunc("/credentials/goal/{goalID}", credentialHandler.GetByGoal).Methods("GET")
	protected.HandleFunc("/credentials/phase/{phase}", credentialHandler.GetPhaseCertificate).Methods("GET")
	protected.HandleFunc("/credentials/{number}/share", credentialHandler.RecordShare).Methods("POST")
	protected.HandleFunc("/credentials/repair", credentialHandler.Repair).Methods("POST")

	// Operator-only revocation, same basic auth as /metrics
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Handle("/credentials/{number}/revoke",
		middleware.BasicAuthMiddleware(http.HandlerFunc(credentialHandler.Revoke))).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
