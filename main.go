package main

import (
	"database/sql"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/yumyai/snpview/logger"
	mydb "github.com/yumyai/snpview/pkg/db"
	"github.com/yumyai/snpview/pkg/download"
	"github.com/yumyai/snpview/pkg/handler"
	"github.com/yumyai/snpview/pkg/middle"
	"github.com/yumyai/snpview/pkg/model"
	"github.com/yumyai/snpview/pkg/render"
	"github.com/yumyai/snpview/pkg/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "modernc.org/sqlite"
)

var (
	snpview_data string
)

func main() {

	// Establish logger
	VERSION := "0.1.0"
	LOG_LEVEL := zapcore.InfoLevel

	if err := logger.InitLogger(LOG_LEVEL); err != nil {
		panic(err)
	}

	// Try load env
	dotenvErr := godotenv.Load()

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	snpview_data = os.Getenv("SNPVIEW_DATA")

	if snpview_data == "" {
		logger.Warn("No local environment (SNPVIEW_DATA), using default value (./data)")
		snpview_data = "./data"
	}

	ref_sqlite := path.Join(snpview_data, "db/reference_index.db")
	render_dir := path.Join(snpview_data, "renders")

	plot_cmd := envStringFallback("SNPVIEW_PLOT_CMD", "snp_plotter")
	download_dir := envStringFallback("SNPVIEW_DOWNLOAD_DIR", path.Join(snpview_data, "downloads"))
	addr := envStringFallback("SNPVIEW_ADDR", "0.0.0.0:8080")
	max_flank := envInt64Fallback("SNPVIEW_MAX_FLANK", model.DefaultValidatorConfig().MaxFlank)

	// Connect to the reference contig index
	sqldb, _ := sql.Open("sqlite", ref_sqlite)

	refdb, err := mydb.NewRefDB(sqldb)
	if err != nil {
		logger.Fatal("Cannot open reference index", zap.String("error message", err.Error()))
	}

	validatorConfig := model.DefaultValidatorConfig()
	validatorConfig.MaxFlank = max_flank

	sessions := session.NewManager(session.Config{
		Validator: &model.Validator{
			Contigs: refdb,
			Config:  validatorConfig,
		},
		Pipeline: &render.ExecPipeline{
			Command: plot_cmd,
			OutDir:  render_dir,
		},
		Downloader: &download.Dir{Root: download_dir},
	})

	appctx := &handler.AppContext{
		RefDB:    refdb,
		Sessions: sessions,
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open reference index on", zap.String("DB_LOC", ref_sqlite))
	logger.Info("Render pipeline", zap.String("command", plot_cmd), zap.Int64("max_flank", max_flank))

	mux := NewRouter(appctx)

	// Apply middleware
	middlewareLogger := middle.CreateMiddlewareLogger(zapcore.DebugLevel)
	m := middle.LoggingMiddleware(middlewareLogger)
	rid := middle.RequestIDMiddleware(middlewareLogger)
	newmux := rid(m(mux))

	logger.Info("Server starting on " + addr + "...")
	httpErr := http.ListenAndServe(addr, newmux)
	if httpErr != nil {
		logger.Error("Error starting server:", zap.String("error message", httpErr.Error()))
	}
}

// Move to router.go in the next iteration
func NewRouter(appctx *handler.AppContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Session routes
	mux.HandleFunc("POST /session", appctx.CreateSessionHandler)
	mux.HandleFunc("DELETE /session/{session_id}", appctx.CloseSessionHandler)
	mux.HandleFunc("GET /session/{session_id}", appctx.SessionStatusPage)
	mux.HandleFunc("POST /session/{session_id}/render", appctx.RenderTriggerHandler)
	mux.HandleFunc("POST /session/{session_id}/click", appctx.PlotClickHandler)
	mux.HandleFunc("POST /session/{session_id}/confirm", appctx.ConfirmHandler)

	// Upload collaborator notifications
	mux.HandleFunc("POST /session/{session_id}/files", appctx.FileNoticeHandler)

	// API routes
	mux.HandleFunc("GET /api/v1/health", handler.HealthCheck)
	mux.HandleFunc("GET /api/v1/contigs", appctx.ContigListHandler)

	// Static files
	setupStaticFiles(mux)

	return mux
}

// Manually add static for all route that use this
func setupStaticFiles(mux *http.ServeMux) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir("./static/"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}

func envStringFallback(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Fallback(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil || num <= 0 {
		logger.Warn("Invalid value for " + key + ", using default")
		return fallback
	}
	return num
}
