package web

import (
	"io"
	"net/http"

	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"go.uber.org/zap"
)

// AuthContext carries authentication state through view models
type AuthContext struct {
	IsAuthenticated bool
	FullName        string
	IsAdmin         bool
	LoginURL        string // Where login button should link
	LogoutURL       string // Where logout button should link
}

type PageView struct {
	AuthContext
	Title string
}

// BannerView is a dismissible, non-blocking error above a list.
type BannerView struct {
	Message    string
	DismissURL string
}

func newBannerView(err *order.Error, dismissURL string) *BannerView {
	if err == nil {
		return nil
	}
	return &BannerView{Message: err.Message(), DismissURL: dismissURL}
}

type LoginView struct {
	PageView
	UserName string
	Message  string
}

type RegisterView struct {
	PageView
	UserName string
	FullName string
	Admin    bool
	Message  string
}

func (s *Server) page(title string) PageView {
	return PageView{
		AuthContext: s.authContext(),
		Title:       title,
	}
}

// render reports a template failure. Headers may already be written, so
// this is best effort.
func (s *Server) render(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	s.log.Error("render failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (p *Presentation) RenderLogin(w io.Writer, view LoginView) error {
	return p.tmpl.ExecuteTemplate(w, "login.html", view)
}

func (p *Presentation) RenderRegister(w io.Writer, view RegisterView) error {
	return p.tmpl.ExecuteTemplate(w, "register.html", view)
}
