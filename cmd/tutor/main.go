package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/config"
	dbValkey "github.com/studentmate/tutor/internal/db/valkey"
	logpkg "github.com/studentmate/tutor/internal/logger"
	"github.com/studentmate/tutor/internal/metrics"
	documentrepo "github.com/studentmate/tutor/internal/repository/document"
	reportrepo "github.com/studentmate/tutor/internal/repository/report"
	searchrepo "github.com/studentmate/tutor/internal/repository/search"
	ticketrepo "github.com/studentmate/tutor/internal/repository/ticket"
	chiTransport "github.com/studentmate/tutor/internal/transport/chi"
	openaiTransport "github.com/studentmate/tutor/internal/transport/openai"
	"github.com/studentmate/tutor/internal/transport/tavily"
	chatuc "github.com/studentmate/tutor/internal/usecase/chat"
	documentuc "github.com/studentmate/tutor/internal/usecase/document"
	generationuc "github.com/studentmate/tutor/internal/usecase/generation"
	healthuc "github.com/studentmate/tutor/internal/usecase/health"
	helpdeskuc "github.com/studentmate/tutor/internal/usecase/helpdesk"
	remediationuc "github.com/studentmate/tutor/internal/usecase/remediation"
	reportuc "github.com/studentmate/tutor/internal/usecase/report"
	"github.com/studentmate/tutor/internal/usecase/retrieval"
	"github.com/studentmate/tutor/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tutor API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register model metrics explicitly (no init())
	metrics.RegisterModelMetrics()

	modelClient := openaiTransport.NewClient(&openaiTransport.Config{
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Model:   cfg.Model.ChatModel,
		Logger:  logger,
	})
	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Model.APIKey,
		BaseURL:    cfg.Model.BaseURL,
		Model:      cfg.Model.EmbeddingModel,
		Dimensions: cfg.Model.Dimensions,
		Logger:     logger,
	})
	logger.Info("Model clients created",
		zap.String("chat_model", cfg.Model.ChatModel),
		zap.String("embedding_model", cfg.Model.EmbeddingModel),
		zap.Int("dimensions", cfg.Model.Dimensions),
	)

	// Repositories
	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix)
	if err := docRepo.EnsureIndex(ctx, cfg.Model.Dimensions); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}
	searchRepo := searchrepo.New(store, docRepo.IndexName())
	ticketRepo := ticketrepo.New(store, cfg.Storage.KeyPrefix)

	// One retriever per call site; topK/minScore are deliberately
	// tuned per use and fixed at construction.
	chatRetriever := retrieval.New(embedder, searchRepo, retrieval.ChatPolicy)
	analysisRetriever := retrieval.New(embedder, searchRepo, retrieval.AnalysisPolicy)
	quizRetriever := retrieval.New(embedder, searchRepo, retrieval.QuizPolicy)
	flashcardRetriever := retrieval.New(embedder, searchRepo, retrieval.FlashcardPolicy)

	// Web search is optional: without a credential, mistake analysis
	// degrades to fallback resource bundles.
	var webSearch remediationuc.WebSearcher
	if cfg.WebSearch.APIKey != "" {
		tavilyClient, err := tavily.NewClient(&tavily.Config{
			APIKey:     cfg.WebSearch.APIKey,
			BaseURL:    cfg.WebSearch.BaseURL,
			MaxResults: cfg.WebSearch.MaxResults,
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal("Failed to create web search client", zap.Error(err))
		}
		webSearch = tavilyClient
	} else {
		logger.Warn("Web search credential not set; remediation resources will use fallbacks")
	}

	// Use case services
	chatSvc := chatuc.New(modelClient, chatRetriever, cfg.Model.Temperature)
	generationSvc := generationuc.New(&generationuc.Config{
		Model:              modelClient,
		AnalysisRetriever:  analysisRetriever,
		QuizRetriever:      quizRetriever,
		FlashcardRetriever: flashcardRetriever,
		FallbackModel:      cfg.Model.FallbackModel,
		Temperature:        cfg.Model.Temperature,
	})
	remediationSvc := remediationuc.New(modelClient, webSearch, cfg.Model.Temperature)
	docSvc := documentuc.New(embedder, docRepo)
	reportSvc := reportuc.New(reportrepo.NewWriter(cfg.Reports.Dir))
	helpdeskSvc := helpdeskuc.New(ticketRepo)
	healthSvc := healthuc.New(store, modelClient)

	// Leftover seed tickets from environment setup are removed once at
	// startup, best-effort.
	helpdeskSvc.CleanupSeedTickets(ctx)

	server := chiTransport.NewServer(
		chatSvc, generationSvc, remediationSvc, docSvc, reportSvc, helpdeskSvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
