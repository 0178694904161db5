package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"Flashover/internal/auth"
	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/detector"
	"Flashover/internal/calc/flame"
	"Flashover/internal/calc/growth"
	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/importer"
	"Flashover/internal/calc/radiation"
	"Flashover/internal/calc/reduction"
	"Flashover/internal/calc/report"
	"Flashover/internal/calc/run"
	"Flashover/internal/calc/steel"
	"Flashover/internal/calc/travelling"
	"Flashover/internal/config"
	"Flashover/internal/library"
	"Flashover/internal/repo"
	"Flashover/internal/shell"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, userRepo repo.Repository) {
	opts := run.Options{MaxIterations: cfg.MaxIterations}

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: userRepo, Insecure: !cfg.TLS}
	libraryH := &library.Handler{Repo: userRepo, Options: opts}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	api.HandleFunc("/tools/list", func(w http.ResponseWriter, r *http.Request) {
		httpio.JSON(w, http.StatusOK, run.Calculators())
	}).Methods("GET")

	detectorH := &detector.Handler{MaxIterations: cfg.MaxIterations}
	travellingH := &travelling.Handler{MaxIterations: cfg.MaxIterations}
	steelH := &steel.Handler{MaxIterations: cfg.MaxIterations}
	growthH := &growth.Handler{MaxIterations: cfg.MaxIterations}
	flameH := &flame.Handler{}
	radiationH := &radiation.Handler{}
	reductionH := &reduction.Handler{}
	reportH := &report.Handler{Options: opts}
	batchH := &batch.Handler{Options: opts}
	importH := &importer.Handler{Options: opts}

	api.HandleFunc("/tools/detector/calc", detectorH.Calc).Methods("POST")
	api.HandleFunc("/tools/travelling/calc", travellingH.Calc).Methods("POST")
	api.HandleFunc("/tools/steel/calc", steelH.Calc).Methods("POST")
	api.HandleFunc("/tools/growth/calc", growthH.Calc).Methods("POST")
	api.HandleFunc("/tools/flame/calc", flameH.Calc).Methods("POST")
	api.HandleFunc("/tools/radiation/calc", radiationH.Calc).Methods("POST")
	api.HandleFunc("/tools/reduction/calc", reductionH.Calc).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
	api.HandleFunc("/tools/export/xlsx", reportH.Export).Methods("POST")
	api.HandleFunc("/tools/import/xlsx", importH.Workbook).Methods("POST")
	api.HandleFunc("/tools/batch", batchH.Run).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/inputs", libraryH.List).Methods("GET")
	secureApi.HandleFunc("/inputs", libraryH.Create).Methods("POST")
	secureApi.HandleFunc("/inputs/{id:[0-9]+}", libraryH.Get).Methods("GET")
	secureApi.HandleFunc("/inputs/{id:[0-9]+}", libraryH.Update).Methods("PUT", "PATCH")
	secureApi.HandleFunc("/inputs/{id:[0-9]+}", libraryH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/inputs/{id:[0-9]+}/run", libraryH.Run).Methods("POST")

	wsH := &shell.Server{Options: opts, Rows: cfg.DisplayRows}
	wsH.Upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	mux.HandleFunc("/ws", wsH.ServeWs)

	if _, err := os.Stat("./static"); err == nil {
		mux.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))
	}
}

func openRepository(ctx context.Context, cfg config.Config) (repo.Repository, func()) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, accounts and saved inputs are kept in memory")
		return repo.NewMemory(), func() {}
	}
	db, err := auth.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database is not reachable")
	}
	pg := repo.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	return pg, func() { db.Close() }
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load("conf/config.ini")
	if err != nil {
		log.WithError(err).Fatal("read conf/config.ini")
	}
	cfg.SetupLogging()
	if cfg.TokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	userRepo, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	mux := mux.NewRouter()
	HandleList(mux, cfg, userRepo)
	handler := CORS(mux)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	log.WithFields(log.Fields{"addr": cfg.Addr, "tls": cfg.TLS}).Info("starting server")
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS {
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server shutdown")
	}
	log.Info("server stopped")

	wg.Wait()
}
