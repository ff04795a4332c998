package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aireenelz/rag-employee-learning-system/internal/api/handlers"
	"github.com/Aireenelz/rag-employee-learning-system/internal/api/middleware"
	"github.com/Aireenelz/rag-employee-learning-system/internal/auth"
	"github.com/Aireenelz/rag-employee-learning-system/internal/cache"
	"github.com/Aireenelz/rag-employee-learning-system/internal/config"
	"github.com/Aireenelz/rag-employee-learning-system/internal/document"
	"github.com/Aireenelz/rag-employee-learning-system/internal/embedding"
	"github.com/Aireenelz/rag-employee-learning-system/internal/llm"
	"github.com/Aireenelz/rag-employee-learning-system/internal/queue"
	"github.com/Aireenelz/rag-employee-learning-system/internal/rag"
	"github.com/Aireenelz/rag-employee-learning-system/internal/storage"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store := storage.NewSupabaseStorage(rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey)
	meta := document.NewPostgresStore(rt.db)
	vs := vectorstore.NewPgVectorStore(rt.db)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel)
	queueClient := queue.NewClient(rt.cfg.Redis)
	resultCache := cache.NewCache(rt.redis)

	docSvc := document.NewService(meta, store, vs, embedSvc, rt.cfg.Storage.Bucket, rt.cfg.Ingest).
		WithResync(queueClient).
		WithCacheInvalidation(resultCache, rag.ResultCachePrefix)

	retriever := rag.NewRetriever(vs, embedSvc, resultCache, rag.RetrieverOptions{
		TopK:               rt.cfg.Retrieval.TopK,
		RelevanceThreshold: rt.cfg.Retrieval.RelevanceThreshold,
		CacheTTL:           rt.cfg.Retrieval.CacheTTL,
	})
	generator := rag.NewGenerator(retriever, rt.llmGW, rag.GeneratorOptions{
		Model: rt.cfg.LLM.DefaultModel,
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		docH := handlers.NewDocumentHandler(docSvc)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Patch("/{id}", docH.Update)
			r.Delete("/{id}", docH.Delete)
		})

		chatH := handlers.NewChatHandler(generator)
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatH.Chat)
			r.Post("/stream", chatH.ChatStream)
		})
	})

	return r
}
