package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"git.sr.ht/~jakintosh/shopfront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const sessionExpiredMessage = "Your session has expired. Please sign in again."

type Options struct {
	Client   *api.Client
	Sessions *session.Manager
	Store    domain.LocalStore
	Logger   *zap.Logger
}

type Server struct {
	client       *api.Client
	sessions     *session.Manager
	store        domain.LocalStore
	router       chi.Router
	presentation *Presentation
	log          *zap.Logger

	mu         sync.Mutex
	categories *order.View[domain.Category]
	products   map[string]*order.View[domain.Product]
	flash      string
	retired    sync.WaitGroup
}

func NewServer(opts Options) (*Server, error) {
	pres, err := NewPresentation()
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		client:       opts.Client,
		sessions:     opts.Sessions,
		store:        opts.Store,
		router:       chi.NewRouter(),
		presentation: pres,
		log:          log,
		products:     map[string]*order.View[domain.Product]{},
	}
	s.sessions.OnUnauthorized(s.handleSessionExpired)
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/", s.handleIndex)

	s.router.Get(session.LoginPath, s.handleLoginPage)
	s.router.Post(session.LoginPath, s.handleLogin)
	s.router.Post("/logout", s.handleLogout)
	s.router.Get("/register", s.handleRegisterPage)
	s.router.Post("/register", s.handleRegister)

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(s.requireRole(session.ShopLanding, domain.RoleAdmin))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleCategories)
			r.Post("/", s.handleCreateCategory)
			r.Post("/move", s.handleMoveCategory)
			r.Post("/delete", s.handleDeleteCategory)
			r.Get("/edit", s.handleEditCategoryPage)
			r.Post("/edit", s.handleUpdateCategory)
			r.Post("/dismiss", s.handleDismissCategoryBanner)

			r.Route("/{category}/products", func(r chi.Router) {
				r.Get("/", s.handleProducts)
				r.Post("/", s.handleCreateProduct)
				r.Post("/move", s.handleMoveProduct)
				r.Post("/delete", s.handleDeleteProduct)
				r.Get("/edit", s.handleEditProductPage)
				r.Post("/edit", s.handleUpdateProduct)
				r.Post("/dismiss", s.handleDismissProductBanner)
			})
		})
	})

	s.router.Route("/shop", func(r chi.Router) {
		r.Use(s.requireRole(session.LoginPath, domain.RoleUser, domain.RoleAdmin))
		r.Get("/", s.handleShop)
		r.Get("/categories/{category}", s.handleShopCategory)
		r.Get("/cart", s.handleCart)
		r.Post("/cart", s.handleAddToCart)
		r.Post("/cart/remove", s.handleRemoveFromCart)
		r.Post("/cart/clear", s.handleClearCart)
	})
}

// Wait blocks until every order persist dispatched by any list view has
// resolved, including views already replaced by a newer navigation.
func (s *Server) Wait() {
	s.mu.Lock()
	cats := s.categories
	prods := make([]*order.View[domain.Product], 0, len(s.products))
	for _, v := range s.products {
		prods = append(prods, v)
	}
	s.mu.Unlock()

	if cats != nil {
		cats.Wait()
	}
	for _, v := range prods {
		v.Wait()
	}
	s.retired.Wait()
}

// Run serves on addr until ctx is canceled, then drains in-flight requests
// and pending persists.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("web console listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Live views

// openCategories builds a fresh category view and loads it. Any previous
// view is retired; its pending persists still run to completion. A failed
// load still installs the view so the page can show the error.
func (s *Server) openCategories(ctx context.Context) (*order.View[domain.Category], error) {
	v := order.NewView[domain.Category](s.client.Categories(), s.client.Categories(), order.ViewOptions{
		Name:   "categories",
		Auth:   s.sessions,
		Logger: s.log,
	})
	err := v.Load(ctx)

	s.mu.Lock()
	retire(s, s.categories)
	s.categories = v
	s.mu.Unlock()
	return v, err
}

// liveCategories returns the current category view, opening one if this
// is the first visit.
func (s *Server) liveCategories(ctx context.Context) (*order.View[domain.Category], error) {
	s.mu.Lock()
	v := s.categories
	s.mu.Unlock()
	if v != nil {
		return v, nil
	}
	return s.openCategories(ctx)
}

func (s *Server) openProducts(ctx context.Context, category string) (*order.View[domain.Product], error) {
	scope := s.client.Products(category)
	v := order.NewView[domain.Product](scope, scope, order.ViewOptions{
		Name:   "products/" + category,
		Auth:   s.sessions,
		Logger: s.log,
	})
	err := v.Load(ctx)

	s.mu.Lock()
	retire(s, s.products[category])
	s.products[category] = v
	s.mu.Unlock()
	return v, err
}

func (s *Server) liveProducts(ctx context.Context, category string) (*order.View[domain.Product], error) {
	s.mu.Lock()
	v := s.products[category]
	s.mu.Unlock()
	if v != nil {
		return v, nil
	}
	return s.openProducts(ctx, category)
}

func retire[E order.Entity](s *Server, old *order.View[E]) {
	if old == nil {
		return
	}
	s.retired.Add(1)
	go func() {
		defer s.retired.Done()
		old.Wait()
	}()
}

// Session

func (s *Server) handleSessionExpired(err error) {
	s.log.Info("session expired", zap.Error(err))
	s.mu.Lock()
	s.flash = sessionExpiredMessage
	s.mu.Unlock()
}

func (s *Server) takeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Server) authContext() AuthContext {
	return AuthContext{
		IsAuthenticated: s.sessions.Authenticated(),
		FullName:        s.sessions.FullName(),
		IsAdmin:         s.sessions.HasRole(domain.RoleAdmin),
		LoginURL:        session.LoginPath,
		LogoutURL:       "/logout",
	}
}

// Middleware

// requireRole lets a request through when the session holds any of roles.
// Without a token the user is sent to the login page; a signed-in user
// without the role is sent to fallback.
func (s *Server) requireRole(fallback string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := parseRequestContext(r)
			if !s.sessions.Authenticated() {
				s.redirect(w, r, ctx, session.LoginPath)
				return
			}
			for _, role := range roles {
				if s.sessions.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.redirect(w, r, ctx, fallback)
		})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Helpers

// redirect sends the browser to url. HTMX requests get an HX-Redirect
// header instead of a 303 so the whole page is replaced.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, ctx RequestContext, url string) {
	if ctx.IsHTMX {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// expire signs out after the backend rejected the token and sends the
// browser to the login page. Views forward their own 401s to the session
// manager, so the session may already be gone.
func (s *Server) expire(w http.ResponseWriter, r *http.Request, ctx RequestContext, err error) {
	if s.sessions.Authenticated() {
		s.sessions.HandleUnauthorized(err)
	}
	s.redirect(w, r, ctx, session.LoginPath)
}

// fail reports err. Rejected credentials end up on the login page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, ctx RequestContext, err error, status int) {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.expire(w, r, ctx, err)
		return
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.sessions.Landing(), http.StatusSeeOther)
}
