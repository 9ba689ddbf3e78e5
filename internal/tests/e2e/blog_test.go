//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chiasentiment/Samsonsblog/config"
	"github.com/chiasentiment/Samsonsblog/internal/server"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := resetDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to reset database: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestBlogLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	// The first registered account becomes the admin.
	admin := newBrowser(t)
	if err := register(t, admin, baseURL, "admin@example.com", "Site Admin", "adminpass1!"); err != nil {
		t.Fatalf("register admin: %v", err)
	}

	reader := newBrowser(t)
	if err := register(t, reader, baseURL, "reader@example.com", "Avid Reader", "readerpass1!"); err != nil {
		t.Fatalf("register reader: %v", err)
	}

	// The reader may not reach the editor.
	status, _, err := getPage(reader, baseURL+"/new-post")
	if err != nil {
		t.Fatalf("reader editor request: %v", err)
	}
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for reader editor, got %d", status)
	}

	// The admin publishes a post.
	if err := submitForm(admin, baseURL+"/new-post", url.Values{
		"title":    {"Hello, World"},
		"subtitle": {"The very first post"},
		"img_url":  {"https://example.com/hello.png"},
		"body":     {"Welcome to the blog."},
	}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	status, home, err := getPage(admin, baseURL+"/")
	if err != nil {
		t.Fatalf("home page: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("home status %d", status)
	}
	if !strings.Contains(home, "Hello, World") {
		t.Fatalf("home page missing post title")
	}

	// The reader comments on the post.
	if err := submitForm(reader, baseURL+"/post/1", url.Values{
		"body": {"Great first post!"},
	}); err != nil {
		t.Fatalf("submit comment: %v", err)
	}

	status, page, err := getPage(reader, baseURL+"/post/1")
	if err != nil {
		t.Fatalf("post page: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("post status %d", status)
	}
	if !strings.Contains(page, "Great first post!") {
		t.Fatalf("post page missing comment")
	}
	if !strings.Contains(page, "Avid Reader") {
		t.Fatalf("post page missing comment author")
	}

	// The admin edits the post; title changes, author stays.
	if err := submitForm(admin, baseURL+"/edit-post/1", url.Values{
		"title":    {"Hello again, World"},
		"subtitle": {"Now with edits"},
		"img_url":  {"https://example.com/hello.png"},
		"body":     {"Welcome back to the blog."},
	}); err != nil {
		t.Fatalf("edit post: %v", err)
	}

	_, page, err = getPage(reader, baseURL+"/post/1")
	if err != nil {
		t.Fatalf("post page after edit: %v", err)
	}
	if !strings.Contains(page, "Hello again, World") {
		t.Fatalf("post page missing edited title")
	}
	if !strings.Contains(page, "Site Admin") {
		t.Fatalf("post page missing original author")
	}

	// Logged-out visitors bounce to the login page.
	anonymous := newBrowser(t)
	status, page, err = getPage(anonymous, baseURL+"/")
	if err != nil {
		t.Fatalf("anonymous home: %v", err)
	}
	if status != http.StatusOK || !strings.Contains(page, "Log In") {
		t.Fatalf("expected anonymous visitor on the login page, got status %d", status)
	}

	// The admin deletes the post; its page is gone afterwards.
	status, _, err = getPage(admin, baseURL+"/delete/1")
	if err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("delete status %d", status)
	}

	status, _, err = getPage(admin, baseURL+"/post/1")
	if err != nil {
		t.Fatalf("post page after delete: %v", err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

// newBrowser returns an HTTP client with its own cookie jar, standing in
// for one logged-in browser session.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func register(t *testing.T, client *http.Client, baseURL, email, name, password string) error {
	t.Helper()

	return submitForm(client, baseURL+"/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
}

// submitForm posts a form and follows the redirect chain to its end,
// failing on any non-2xx final status.
func submitForm(client *http.Client, target string, form url.Values) error {
	resp, err := client.PostForm(target, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("form post to %s: status %d: %s", target, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func getPage(client *http.Client, target string) (int, string, error) {
	resp, err := client.Get(target)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// resetDatabase empties the blog tables so the first registration in the
// run becomes user 1 again.
func resetDatabase() error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx, "TRUNCATE users, blog_posts, comments RESTART IDENTITY CASCADE")
	return err
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("SESSION_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "samsonsblog")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "samsonsblog_db")
	_ = os.Setenv("DB_USE_SSL", "false")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
