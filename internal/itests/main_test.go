package itests

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SieveAPI/internal"
	"SieveAPI/internal/config"
	"SieveAPI/internal/db"
	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
	"SieveAPI/internal/resolver"
	"SieveAPI/internal/router"

	"github.com/Masterminds/squirrel"
)

var (
	testBaseURL string
	httpSrv     *http.Server
)

// Integration tests need a local Postgres; they only run with
// SIEVE_ITESTS=1 so the unit suite stays self-contained.
func TestMain(m *testing.M) {
	if os.Getenv("SIEVE_ITESTS") == "" {
		fmt.Println("SIEVE_ITESTS not set; skipping integration tests")
		os.Exit(0)
	}

	logger.SetOutput(os.Stderr)
	cfg := config.LoadConfig()

	teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN, func(dsn string) error {
		return db.InitPostgres(context.Background(), dsn)
	})
	if err != nil {
		println("setup test DB failed:", err.Error())
		os.Exit(1)
	}

	root, err := internal.FindRepoRoot()
	if err != nil {
		println("findRepoRoot failed:", err.Error())
		os.Exit(1)
	}
	if err := query.InitRegistry(filepath.Join(root, "resources")); err != nil {
		println("InitRegistry failed:", err.Error())
		os.Exit(1)
	}

	resolver.RegisterManualFilter("people", "search", func(raw string) squirrel.Sqlizer {
		pattern := "%" + raw + "%"
		return squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		}
	})

	router.InitRoutes(cfg)
	httpSrv = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: http.DefaultServeMux,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			println("HTTP server failed:", err.Error())
			os.Exit(1)
		}
	}()

	if err := waitForPort("localhost", cfg.Port, 3*time.Second); err != nil {
		println("HTTP port not ready:", err.Error())
		_ = httpSrv.Close()
		os.Exit(1)
	}
	testBaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)

	code := m.Run()

	_ = httpSrv.Close()
	db.ClosePostgres()
	if err := teardownDB(); err != nil {
		println("teardown failed:", err.Error())
	}
	os.Exit(code)
}

func waitForPort(host, port string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("port %s not listening after %s", port, timeout)
}

func TestRegistrySanity(t *testing.T) {
	if testBaseURL == "" {
		t.Fatal("bootstrap not ready")
	}
	for _, name := range []string{"people", "orders"} {
		if _, ok := query.GetResource(name); !ok {
			t.Fatalf("resource %q missing from registry", name)
		}
	}
}
