package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"LTSLab/internal/auth"
	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
	"LTSLab/internal/calc/importer"
	"LTSLab/internal/calc/report"
	"LTSLab/internal/config"
	"LTSLab/internal/logging"
	"LTSLab/internal/notify"
	"LTSLab/internal/repo"
	"LTSLab/internal/version"

	"github.com/ansel1/merry"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/powerman/structlog"
)

var (
	log = structlog.New(structlog.KeyUnit, "main")
	wg  sync.WaitGroup
)

type deps struct {
	cfg      *config.Config
	repo     repo.Repository
	notifier notify.Notifier
	tokenKey []byte
	secure   bool
}

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Report-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, d deps) {
	authEnv := &auth.Authenv{JWTkey: d.tokenKey, Repo: d.repo, SecureCookie: d.secure}
	limiter := auth.NewIPRateLimiter(5, 20)

	gasSvc := gas.NewService(d.cfg)
	evaluator := check.NewEvaluator(d.cfg)
	gasH := &gas.Handler{Service: gasSvc}
	checkH := &check.Handler{Config: d.cfg, Evaluator: evaluator}
	importH := &importer.Handler{Service: gasSvc}
	reportH := &report.Handler{
		Config:    d.cfg,
		Evaluator: evaluator,
		Gas:       gasSvc,
		Repo:      d.repo,
		Notifier:  d.notifier,
	}

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.LoginHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	lab := api.PathPrefix("/lab").Subrouter()
	lab.Use(authEnv.AuthMiddleware)

	lab.HandleFunc("/modules", checkH.Modules).Methods("GET")
	lab.HandleFunc("/modules/{module}/check", checkH.Check).Methods("POST")
	lab.HandleFunc("/gas/components", gasH.Components).Methods("GET")
	lab.HandleFunc("/gas/calc", gasH.Calc).Methods("POST")
	lab.HandleFunc("/gas/batch", gasH.Batch).Methods("POST")
	lab.HandleFunc("/gas/import", importH.Import).Methods("POST")
	lab.HandleFunc("/report/pdf", reportH.PDF).Methods("POST")
	lab.HandleFunc("/history", reportH.History).Methods("GET")

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(version.Version))
	}).Methods("GET")
}

// openRepo picks Postgres when DATABASE_URL is set and the local SQLite
// file otherwise.
func openRepo(ctx context.Context) (repo.Repository, func() error, error) {
	var (
		r       repo.Repository
		closeDB func() error
	)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := repo.InitDB(url)
		if err != nil {
			return nil, nil, err
		}
		r, closeDB = repo.NewPostgresRepository(db), db.Close
	} else {
		file := os.Getenv("HISTORY_DB")
		if file == "" {
			file = "ltslab.sqlite"
		}
		db, err := repo.OpenSqlite(file)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using local history", "file", file)
		r, closeDB = repo.NewSqliteRepository(db), db.Close
	}
	if err := r.Migrate(ctx); err != nil {
		_ = closeDB()
		return nil, nil, merry.Prepend(err, "migrate")
	}
	return r, closeDB, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(merry.Prepend(err, "load .env"))
	}
	logging.Init(os.Getenv("LOG_LEVEL"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("LAB_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}
	notifier, err := notify.FromEnv(os.Getenv("TOKEN_BOT"), os.Getenv("ADMIN_PEER_ID"))
	if err != nil {
		log.Fatal(err)
	}
	r, closeRepo, err := openRepo(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer closeRepo()

	cert, key := os.Getenv("TLS_CERT"), os.Getenv("TLS_KEY")
	useTLS := cert != "" && key != ""
	addr := os.Getenv("LAB_ADDR")
	if addr == "" {
		addr = ":8080"
		if useTLS {
			addr = ":443"
		}
	}

	router := mux.NewRouter()
	HandleList(router, deps{cfg: cfg, repo: r, notifier: notifier, tokenKey: []byte(tokenKey), secure: useTLS})

	server := &http.Server{
		Addr:              addr,
		Handler:           CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", "addr", addr, "tls", useTLS, "version", version.Version, "modules", cfg.ModuleNames())
		var err error
		if useTLS {
			err = server.ListenAndServeTLS(cert, key)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.PrintErr(err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.PrintErr(merry.Prepend(err, "shutdown"))
	}
	wg.Wait()
	log.Info("server stopped")
}
