// Package pages renders the static views selected by the application router.
package pages

import (
	"html/template"
	"log/slog"
	"net/http"
)

var layout = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>WorldWise | {{.Title}}</title></head>
<body>
<nav><a href="/">Home</a> <a href="/product">Product</a> <a href="/pricing">Pricing</a> <a href="/app/cities">App</a></nav>
<main><h1>{{.Title}}</h1><p>{{.Body}}</p></main>
</body>
</html>
`))

// Page is one routed view.
type Page struct {
	Title  string
	Body   string
	Status int
}

var (
	Home = Page{
		Title:  "WorldWise",
		Body:   "You travel the world. WorldWise keeps track of your adventures.",
		Status: http.StatusOK,
	}
	Product = Page{
		Title:  "Product",
		Body:   "A world map that tracks your footsteps into every city you can think of.",
		Status: http.StatusOK,
	}
	Pricing = Page{
		Title:  "Pricing",
		Body:   "Simple pricing. Just $9/month.",
		Status: http.StatusOK,
	}
	PageNotFound = Page{
		Title:  "Page not found",
		Body:   "Page not found 😢",
		Status: http.StatusNotFound,
	}
)

// Handler renders p.
func Handler(p Page, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(p.Status)
		if err := layout.Execute(w, p); err != nil {
			logger.ErrorContext(r.Context(), "Failed to render page",
				slog.String("page", p.Title), slog.Any("error", err))
		}
	}
}

// Register mounts the page routes. "/" only matches the root path exactly; every other
// unmatched path falls through to PageNotFound.
func Register(mux *http.ServeMux, logger *slog.Logger) {
	mux.Handle("GET /{$}", Handler(Home, logger))
	mux.Handle("GET /product", Handler(Product, logger))
	mux.Handle("GET /pricing", Handler(Pricing, logger))
	mux.Handle("/", Handler(PageNotFound, logger))
}
