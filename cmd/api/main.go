package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	dataFile := getEnv("DATA_FILE", "books_data.json")
	rateLimitRPS := getEnvFloat("RATE_LIMIT_RPS", 10)
	rateLimitBurst := getEnvInt("RATE_LIMIT_BURST", 20)
	maxBodyBytes := int64(getEnvInt("MAX_BODY_BYTES", 1<<20))
	corsOrigins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",")

	fileStore, err := store.OpenFile(dataFile)
	if err != nil {
		log.Fatalf("cannot open data file %s: %v", dataFile, err)
	}

	service, err := catalog.NewService(context.Background(), fileStore)
	if err != nil {
		log.Fatalf("cannot load catalog: %v", err)
	}
	log.Printf("catalog loaded from %s", dataFile)

	handler := catalog.NewHTTPHandler(service)

	router := http.NewServeMux()
	router.HandleFunc("GET /books", handler.List)
	router.HandleFunc("POST /books", handler.Create)
	router.HandleFunc("GET /books/{id}", handler.Get)
	router.HandleFunc("PUT /books/{id}", handler.Update)
	router.HandleFunc("DELETE /books/{id}", handler.Delete)
	router.HandleFunc("GET /status", handler.Status)
	router.HandleFunc("/", handler.NotFound)

	rateLimit := httpx.NewRateLimitMiddleware(rateLimitRPS, rateLimitBurst)

	// Recovery sits inside the access log so a panic is recovered on the
	// log's status-recording writer and shows up as a logged 500.
	var h http.Handler = router
	h = httpx.RequestSizeLimitMiddleware(maxBodyBytes)(h)
	h = httpx.SecurityHeadersMiddleware(h)
	h = httpx.CORSMiddleware(corsOrigins)(h)
	h = rateLimit.Middleware(h)
	h = httpx.RecoveryMiddleware(h)
	h = httpx.AccessLogMiddleware(h)
	h = httpx.RequestIDMiddleware(h)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q, using %g", key, v, def)
	}
	return def
}
