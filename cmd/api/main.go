//	@title			Amooora Users API
//	@version		1.0
//	@description	User accounts plus photo storage proxied to an S3-compatible object store.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/amooora/users-service/internal/config"
	"github.com/amooora/users-service/internal/db"
	appMiddleware "github.com/amooora/users-service/internal/middleware"
	"github.com/amooora/users-service/internal/photo"
	"github.com/amooora/users-service/internal/storage"
	"github.com/amooora/users-service/internal/user"

	_ "github.com/amooora/users-service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	photoSvc := photo.NewService(store)
	photoHandler := photo.NewHandler(photoSvc)
	userPhotoHandler := photo.NewUserHandler(photoSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// User CRUD
	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Create)
		r.Get("/email/{email}", userHandler.GetByEmail)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	// Photos
	r.Route("/api", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.Post("/upload", photoHandler.Upload)
			r.Get("/download/{photoName}", photoHandler.Download)
			r.Get("/url/{photoName}", photoHandler.GetURL)
			r.Get("/list", photoHandler.List)
			r.Get("/exists/{photoName}", photoHandler.Exists)
			r.Get("/info/{photoName}", photoHandler.Info)
		})

		r.Route("/users/{userId}/photos", func(r chi.Router) {
			r.Post("/", userPhotoHandler.Upload)
			r.Get("/", userPhotoHandler.List)
			r.Post("/avatar", userPhotoHandler.UploadAvatar)
			r.Get("/avatar", userPhotoHandler.DownloadAvatar)
			r.Get("/urls", userPhotoHandler.AllURLs)
			r.Get("/{photoName}", userPhotoHandler.Download)
			r.Delete("/{photoName}", userPhotoHandler.Delete)
			r.Get("/{photoName}/url", userPhotoHandler.PhotoURL)
			r.Get("/{photoName}/exists", userPhotoHandler.PhotoExists)
			r.Get("/{photoName}/info", userPhotoHandler.PhotoInfo)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.AppEnv, cfg.StorageProvider)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

// newStorage builds the object storage backend named by configuration. The
// choice is made once here and fixed for the process lifetime.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case "minio":
		return storage.NewMinioStorage(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageUseSSL,
		)
	case "s3":
		return storage.NewS3Storage(
			context.Background(),
			s3Endpoint(cfg),
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageRegion,
		)
	default:
		return nil, fmt.Errorf("unknown storage provider %q (want minio or s3)", cfg.StorageProvider)
	}
}

// s3Endpoint turns the bare host:port endpoint into a URL for the AWS SDK,
// or empty for native AWS S3.
func s3Endpoint(cfg *config.Config) string {
	if cfg.StorageEndpoint == "" {
		return ""
	}
	scheme := "http"
	if cfg.StorageUseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.StorageEndpoint
}
