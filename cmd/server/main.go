package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/example/presta-export-service/internal/adapter/cache"
	"github.com/example/presta-export-service/internal/adapter/csvfile"
	"github.com/example/presta-export-service/internal/adapter/httpapi"
	"github.com/example/presta-export-service/internal/adapter/natsstan"
	"github.com/example/presta-export-service/internal/adapter/presta"
	"github.com/example/presta-export-service/internal/adapter/repo"
	"github.com/example/presta-export-service/internal/domain"
	"github.com/example/presta-export-service/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using process environment")
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		log.Fatalf("API_KEY is required")
	}
	stores := parseStores(getEnv("STORES", ""))
	if len(stores) == 0 {
		log.Fatalf("STORES is required (comma list of name or name=hostname)")
	}

	timeout := time.Duration(getEnvInt("HTTP_TIMEOUT", 15)) * time.Second
	gateway := &presta.Client{
		HTTP:       &http.Client{Timeout: timeout},
		APIKey:     apiKey,
		SecureKey:  os.Getenv("SECURE_KEY"),
		Stores:     stores,
		InvoiceDir: getEnv("INVOICE_DIR", "invoices"),
	}

	var mirror domain.QueryRunner
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("mirror db connect: %v", err)
		}
		defer pool.Close()
		mirror = repo.NewPostgresMirror(pool)
	}

	var notify domain.ExportNotifier
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		pub, err := natsstan.NewPublisher(
			getEnv("STAN_CLUSTER_ID", "presta-cluster"),
			os.Getenv("STAN_CLIENT_ID"),
			natsURL,
			getEnv("STAN_SUBJECT", "exports"),
		)
		if err != nil {
			log.Fatalf("stan connect: %v", err)
		}
		defer pub.Close()
		notify = pub
	}

	save := usecase.SaveProducts{
		Orders:   gateway,
		Supplier: gateway,
		Files:    &csvfile.Writer{Dir: getEnv("OUTPUT_DIR", "products")},
		Notify:   notify,
		NewCache: func() domain.SupplierCache { return cache.NewMemorySupplierCache() },
	}

	api := httpapi.NewServer(save, gateway, gateway, gateway, mirror)

	srv := &http.Server{Addr: getEnv("HTTP_ADDR", ":8080"), Handler: api.Router}
	go func() {
		log.Printf("http listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s: expected integer, got %q", key, v)
	}
	return n
}

// parseStores reads the store allow-list: a comma-separated list of
// name=hostname pairs. A bare name maps to <name>.ma, the shop's
// default domain.
func parseStores(s string) map[string]string {
	stores := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, host, ok := strings.Cut(entry, "=")
		if !ok {
			host = name + ".ma"
		}
		stores[name] = host
	}
	return stores
}
