package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"monotributo/internal/core"
	applog "monotributo/internal/log"
	"monotributo/internal/middleware/ratelimit"
	"monotributo/internal/middleware/security"
	"monotributo/internal/middleware/trace"
	"monotributo/internal/services"
	"monotributo/internal/sheets"
	appweb "monotributo/web"
)

type (
	// SheetOpener resolves a spreadsheet id or URL to a readable source.
	SheetOpener func(ref string) sheets.TableSource

	// Services are the application services the handlers call.
	Services struct {
		Clients  *services.ClientService
		Invoices *services.InvoiceService
		Notes    *services.NoteService
		Reports  *services.ReportService
		// Sheets enables Google spreadsheet imports; nil disables them.
		Sheets SheetOpener
	}

	Options struct {
		Logger             *applog.Logger
		RateLimitPerMinute int
		// TrustedProxies extend the loopback and private ranges whose
		// X-Forwarded-For headers are honored.
		TrustedProxies []string
	}

	Server struct {
		http.Server
		logger    *applog.Logger
		templates *template.Template
		svc       Services

		rateLimiter      *ratelimit.Limiter
		securityDetector *security.Detector
		traceMiddleware  *trace.Middleware
		appMetrics       *appMetrics

		shutdownOnce sync.Once
	}

	appMetrics struct {
		uptime           time.Time
		imports          int64
		invoicesAccepted int64
		reportViews      int64
	}
)

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	rlCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		logger:           logger.WithComponent(applog.ComponentHTTP),
		svc:              svc,
		rateLimiter:      ratelimit.NewLimiter(rlCfg),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err, applog.FieldComponent, applog.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("GET /api/clients", s.handleListClients)
	mux.HandleFunc("POST /api/clients", s.handleCreateClient)
	mux.HandleFunc("GET /api/clients/{id}", s.handleGetClient)
	mux.HandleFunc("PUT /api/clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", s.handleDeleteClient)

	mux.HandleFunc("GET /api/clients/{id}/invoices", s.handleListInvoices)
	mux.HandleFunc("POST /api/clients/{id}/invoices", s.handleAddInvoice)
	mux.HandleFunc("DELETE /api/clients/{id}/invoices", s.handleClearInvoices)
	mux.HandleFunc("DELETE /api/clients/{id}/invoices/{invoiceID}", s.handleDeleteInvoice)
	mux.HandleFunc("GET /api/clients/{id}/imports", s.handleImportHistory)
	mux.HandleFunc("POST /api/clients/{id}/imports", s.handleImport)
	mux.HandleFunc("POST /api/clients/{id}/imports/google", s.handleImportGoogle)
	mux.HandleFunc("GET /api/clients/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/clients/{id}/months", s.handleMonths)

	mux.HandleFunc("GET /api/clients/{id}/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/clients/{id}/notes", s.handleAddNote)
	mux.HandleFunc("DELETE /api/clients/{id}/notes/{noteID}", s.handleDeleteNote)

	mux.HandleFunc("GET /reporte/{id}", s.handleReport)
	mux.HandleFunc("GET /api/reports/{id}", s.handleReportJSON)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldComponent, applog.ComponentRateLimit,
			applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and then the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

var templateFuncs = template.FuncMap{
	"pesos":   core.FormatPesos,
	"percent": formatPercent,
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
