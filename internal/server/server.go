package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wrenfield/hearth/internal/backup"
	"github.com/wrenfield/hearth/internal/handler"
	"github.com/wrenfield/hearth/internal/live"
	"github.com/wrenfield/hearth/internal/middleware"
	"github.com/wrenfield/hearth/internal/store"
)

// Rate ceilings per deployment mode, counted per client address over the
// window. Development keeps a ceiling at all so the limiter code path is
// always exercised.
const (
	rateWindow    = 15 * time.Minute
	rateLimitProd = 100
	rateLimitDev  = 1000
)

// Config carries everything main reads from the environment.
type Config struct {
	// Env is "production" or "development". Production tightens the rate
	// ceiling, pins HTTPS in the headers, and marks cookies Secure.
	Env          string
	TemplatesDir string
	StaticDir    string
	Backup       backup.Config
}

func (c Config) production() bool {
	return c.Env == "production"
}

type Server struct {
	db            *sql.DB
	cfg           Config
	hub           *live.Hub
	noticeH       *handler.NoticeHandler
	shoppingH     *handler.ShoppingHandler
	backupH       *handler.BackupHandler
	pageH         *handler.PageHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "web/templates"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "web/static"
	}

	hub := live.NewHub(logger.With("component", "live"))

	noticeStore := store.NewNoticeStore(db)
	shoppingStore := store.NewShoppingStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"))

	renderer := handler.NewRenderer(cfg.TemplatesDir, logger.With("component", "render"))
	responder := handler.NewResponder(renderer, logger.With("component", "respond"))

	limit := rateLimitDev
	if cfg.production() {
		limit = rateLimitProd
	}

	return &Server{
		db:            db,
		cfg:           cfg,
		hub:           hub,
		noticeH:       handler.NewNoticeHandler(noticeStore, hub, renderer, responder, logger.With("component", "notice")),
		shoppingH:     handler.NewShoppingHandler(shoppingStore, hub, renderer, responder, logger.With("component", "shopping")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, responder, logger.With("component", "backup_handler")),
		pageH:         handler.NewPageHandler(renderer),
		rateLimiter:   middleware.NewRateLimiter(limit, rateWindow),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// RateLimiter returns the limiter for main's cleanup ticker.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the manager so main can run its schedule.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Router assembles the middleware chain and route table. Static assets, the
// health check, and the websocket sit outside the rate limiter and CSRF
// check; every page and form action passes through both.
func (s *Server) Router() http.Handler {
	outer := http.NewServeMux()
	outer.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	outer.HandleFunc("GET /health", s.healthHandler)
	outer.HandleFunc("GET /ws", live.Handler(s.hub))

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	guarded := middleware.RateLimit(s.rateLimiter, middleware.RealIP)(
		middleware.CSRF(s.cfg.production())(mux),
	)
	outer.Handle("/", guarded)

	chain := middleware.SecureHeaders(s.cfg.production())(outer)
	return middleware.RequestLogger(s.logger.With("component", "http"))(chain)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.pageH.Home)
	mux.HandleFunc("GET /calendar", s.pageH.Calendar)

	mux.HandleFunc("GET /notices", s.noticeH.Page)
	mux.HandleFunc("POST /notices/add", s.noticeH.Create)
	mux.HandleFunc("POST /notices/delete", s.noticeH.Delete)

	mux.HandleFunc("GET /shopping-list", s.shoppingH.Page)
	mux.HandleFunc("POST /shopping-list/add", s.shoppingH.Create)
	mux.HandleFunc("POST /shopping-list/delete", s.shoppingH.Delete)
	mux.HandleFunc("POST /shopping-list/check", s.shoppingH.ToggleChecked)

	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backup/now", s.backupH.RunNow)
	mux.HandleFunc("GET /api/backup/download/{id}", s.backupH.Download)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
