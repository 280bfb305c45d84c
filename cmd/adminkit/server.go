// ABOUTME: Server and API client wiring shared by the CLI commands.
// ABOUTME: Builds the router with the admin UI, the optional demo API and the logged API client.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/2389/adminkit/internal/admin"
	"github.com/2389/adminkit/internal/auth"
	"github.com/2389/adminkit/internal/backend"
	"github.com/2389/adminkit/internal/catalog"
	"github.com/2389/adminkit/internal/config"
	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/logging"
	"github.com/2389/adminkit/internal/schema"
	"github.com/2389/adminkit/internal/store"
)

// demoBaseURL addresses the embedded API through the in-process transport.
const demoBaseURL = "http://adminkit.internal/api"

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	store  *store.Store
	router chi.Router
	client httpclient.Client
}

func (a *app) Close() error {
	return a.store.Close()
}

// newApp opens the store, registers entities and builds the router and
// API client. With the demo backend the client reaches /api on the same
// router without a network hop.
func newApp(cfg *config.Config) (*app, error) {
	if err := registerEntities(cfg.EntitiesDir); err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusFound)
	})

	baseURL := cfg.APIURL
	var transport http.RoundTripper
	if cfg.UseDemoBackend() {
		api := backend.New(s, catalog.Collections(), backend.WithFallback(backend.Collection{
			Shape:     backend.ShapeEnvelope,
			Paginated: true,
			IDs:       backend.IDInt,
		}))
		r.With(logging.Middleware(s)).Mount("/api", api.Handler(cfg.APIToken))
		baseURL = demoBaseURL
		transport = backend.InProcess{Handler: r}
	}

	clientOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithTransport(logging.NewTransport(s, transport)),
	}
	if cfg.APIToken != "" {
		clientOpts = append(clientOpts, httpclient.WithCredentials(auth.StaticToken(cfg.APIToken)))
	}
	client := httpclient.New(baseURL, clientOpts...)

	admin.NewHandlers(s, client, cfg.PageSize).RegisterRoutes(r)

	return &app{cfg: cfg, store: s, router: r, client: client}, nil
}

// registerEntities registers the built-in catalog and any YAML configs.
// A YAML entity whose slug is already taken is skipped.
func registerEntities(dir string) error {
	catalog.Register()
	if dir == "" {
		return nil
	}

	configs, err := schema.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		if _, exists := schema.Get(cfg.Key()); exists {
			log.Printf("entity %q already registered, skipping %s config", cfg.Key(), cfg.EntityName)
			continue
		}
		schema.Register(cfg)
	}
	return nil
}

// entities resolves slugs to registered configurations; no slugs means all.
func entities(slugs []string) ([]*schema.EntityConfig, error) {
	if len(slugs) == 0 {
		return schema.All(), nil
	}
	var out []*schema.EntityConfig
	for _, slug := range slugs {
		cfg, ok := schema.Get(slug)
		if !ok {
			return nil, fmt.Errorf("unknown entity %q (available: %v)", slug, schema.Slugs())
		}
		out = append(out, cfg)
	}
	return out, nil
}

func newServeCmd(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin console",
		Long: `Start the adminkit HTTP server.

The server provides:
  • Admin console at http://localhost:PORT/admin
  • Request log at http://localhost:PORT/admin/logs
  • Demo REST API at http://localhost:PORT/api (unless ADMINKIT_API_URL is set)
  • Health check at http://localhost:PORT/healthz

Environment Variables:
  ADMINKIT_PORT          Server port (default: 9100)
  ADMINKIT_API_URL       External REST API; empty uses the demo API
  ADMINKIT_API_TOKEN     Bearer token required by the demo API and sent by the console
  ADMINKIT_PAGE_SIZE     Initial rows per page (default: 10)
  ADMINKIT_ENTITIES_DIR  Directory of YAML entity configurations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				opts.cfg.Port = port
			}
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := opts.cfg.Addr()
			log.Printf("adminkit listening on %s", addr)
			log.Printf("Database: %s", opts.cfg.DBPath)
			if opts.cfg.UseDemoBackend() {
				log.Printf("API: embedded demo backend at /api")
			} else {
				log.Printf("API: %s", opts.cfg.APIURL)
			}
			return http.ListenAndServe(addr, a.router)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	return cmd
}
