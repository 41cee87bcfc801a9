package app

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/observability"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Store   storage.Store
	Settler service.Settler
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router serving the Connect services,
// /healthz and /metrics. The result speaks HTTP/2 without TLS.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middlewareStack(params) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	opts := connect.WithInterceptors(middleware.LoggingInterceptor())
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(params.Config.RateLimitPerMinute, time.Minute))

		mount := func(path string, h http.Handler) {
			r.Handle(path+"*", h)
		}
		mount(apiconnect.NewUserServiceHandler(service.NewUserService(params.Store), opts))
		mount(apiconnect.NewGroupServiceHandler(service.NewGroupService(params.Store), opts))
		mount(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(params.Store, params.Settler), opts))
	})

	return h2c.NewHandler(r, &http2.Server{})
}

func middlewareStack(params RouterParams) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	timeout := 30 * time.Second
	if params.Config.AppRequestTimeout > 0 {
		timeout = params.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		chimw.RealIP,
		chimw.RequestID,
		chimw.Recoverer,
		chimw.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					params.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.CORS(params.Config.CORSOrigin),
		middleware.Logging,
	}
	if params.Metrics != nil {
		middlewares = append(middlewares, params.Metrics.Middleware)
	}
	return middlewares
}
