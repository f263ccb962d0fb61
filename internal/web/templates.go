package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are executed by file name; everything else lives in partials.html.
var pages = []string{
	"login.html",
	"register.html",
	"categories.html",
	"edit_category.html",
	"products.html",
	"edit_product.html",
	"shop.html",
	"shop_category.html",
	"cart.html",
}

// Presentation handles all view-related logic and template rendering
type Presentation struct {
	tmpl *template.Template
}

func NewPresentation() (*Presentation, error) {
	tmpl, err := template.New("base").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, name := range pages {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("missing template %q", name)
		}
	}
	return &Presentation{tmpl: tmpl}, nil
}
