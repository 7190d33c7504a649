package project

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/transpile"
	"github.com/daveroberts0321/nadra/watch"
)

// maxSourceBytes bounds the body of a playground request
const maxSourceBytes = 1 << 20

// StartDevServer builds the project, rebuilds on change and serves the
// playground until ctx is done.
func StartDevServer(ctx context.Context, cfg *Config) error {
	fmt.Println("Starting Nadra development server...")

	if err := BuildWith(ctx, cfg); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	go func() {
		rebuild := func() error { return BuildWith(ctx, cfg) }
		if err := watch.Watch(ctx, cfg.SourceDirs, rebuild); err != nil {
			log.Printf("File watcher error: %v", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Printf("Server running at http://localhost%s\n", cfg.Addr)
	fmt.Printf("   Playground: http://localhost%s/\n", cfg.Addr)
	fmt.Printf("   API: http://localhost%s/api/transpile\n", cfg.Addr)
	fmt.Printf("   Generated files: http://localhost%s/build/\n", cfg.Addr)
	fmt.Println("\nWatching for file changes...")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// NewHandler returns the playground routes:
//
//	GET  /                the playground page
//	GET  /build/...       generated files
//	GET  /api/health      liveness
//	POST /api/transpile   Nadra source in, Python out
func NewHandler(cfg *Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status": "ok", "timestamp": "%s"}`, time.Now().Format(time.RFC3339))
	})

	mux.HandleFunc("/api/transpile", func(w http.ResponseWriter, r *http.Request) {
		handleTranspile(w, r, cfg)
	})

	mux.Handle("/build/", http.StripPrefix("/build/", http.FileServer(http.Dir(cfg.OutDir))))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page, err := templates.ReadFile("templates/playground.html")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})

	return mux
}

// diagnosticResponse is the JSON body returned for a rejected program
type diagnosticResponse struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func handleTranspile(w http.ResponseWriter, r *http.Request, cfg *Config) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	code, err := transpile.Source(string(src), "", cfg.Options())
	if err != nil {
		d, ok := diag.As(err)
		if !ok {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(diagnosticResponse{
			Line:    d.Pos.Line,
			Column:  d.Pos.Column,
			Stage:   d.Stage().String(),
			Kind:    d.Kind.String(),
			Message: d.Message,
		})
		return
	}

	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	io.WriteString(w, code)
}
