package web

import (
	"net/http"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/session"
	"go.uber.org/zap"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated() {
		http.Redirect(w, r, s.sessions.Landing(), http.StatusSeeOther)
		return
	}
	view := LoginView{
		PageView: s.page("Sign in"),
		Message:  s.takeFlash(),
	}
	s.render(w, s.presentation.RenderLogin(w, view))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	creds := api.Credentials{
		UserName: strings.TrimSpace(r.FormValue("userName")),
		Password: r.FormValue("password"),
	}

	sess, err := s.client.Login(r.Context(), creds)
	if err != nil {
		s.log.Info("login failed", zap.String("user", creds.UserName), zap.Error(err))
		view := LoginView{
			PageView: s.page("Sign in"),
			UserName: creds.UserName,
			Message:  api.UserMessage(err, "Login failed. Please try again."),
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, s.presentation.RenderLogin(w, view))
		return
	}
	if err := s.sessions.Begin(sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.redirect(w, r, ctx, s.sessions.Landing())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := s.sessions.Clear(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.redirect(w, r, ctx, session.LoginPath)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.presentation.RenderRegister(w, RegisterView{PageView: s.page("Create account")}))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view := RegisterView{
		PageView: s.page("Create account"),
		UserName: strings.TrimSpace(r.FormValue("userName")),
		FullName: strings.TrimSpace(r.FormValue("fullName")),
		Admin:    r.FormValue("admin") == "on",
	}
	password := r.FormValue("password")

	if view.UserName == "" || view.FullName == "" || password == "" {
		view.Message = "All fields are required."
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, s.presentation.RenderRegister(w, view))
		return
	}

	role := domain.RoleUser
	if view.Admin {
		role = domain.RoleAdmin
	}
	reg := api.NewRegistration(view.UserName, view.FullName, password, role)
	if err := s.client.Register(r.Context(), reg); err != nil {
		view.Message = api.UserMessage(err, "Registration failed. Please try again.")
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, s.presentation.RenderRegister(w, view))
		return
	}
	s.redirect(w, r, ctx, session.LoginPath)
}
