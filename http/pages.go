package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rockmass/ml"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Page identifies one entry of the sidebar navigation.
type Page int

const (
	PageInformation Page = iota
	PageAnalysis
)

// pageOrder is the sidebar order; the first page is the landing page.
var pageOrder = []Page{PageInformation, PageAnalysis}

var pageSlugs = map[Page]string{
	PageInformation: "information",
	PageAnalysis:    "analysis",
}

var pageLabels = func() map[Page]string {
	caser := cases.Title(language.English)
	labels := make(map[Page]string, len(pageSlugs))
	for page, slug := range pageSlugs {
		labels[page] = caser.String(slug)
	}
	return labels
}()

func (p Page) Slug() string { return pageSlugs[p] }

// Label is the navigation text, e.g. "Analysis".
func (p Page) Label() string { return pageLabels[p] }

func (p Page) Path() string { return "/pages/" + p.Slug() }

// ParsePage maps a URL slug back to its page.
func ParsePage(slug string) (Page, bool) {
	for page, s := range pageSlugs {
		if s == slug {
			return page, true
		}
	}
	return 0, false
}

type navItem struct {
	Label  string
	Href   string
	Active bool
}

type pageView struct {
	Title          string
	Nav            []navItem
	Parameters     []parameterView
	Recommendation ml.Recommendation
	Labels         []string
	ChartURL       string
}

type parameterView struct {
	ml.ParameterSpec
	Value int
}

func parsePageTemplates() (map[Page]*template.Template, error) {
	templates := make(map[Page]*template.Template, len(pageOrder))
	for _, page := range pageOrder {
		tmpl, err := template.ParseFS(assets, "templates/layout.html", "templates/"+page.Slug()+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page.Slug(), err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// RegisterPages wires the navigation table and the embedded assets.
func (d *Dashboard) RegisterPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /pages/{page}", d.handlePage)

	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pageOrder[0].Path(), http.StatusFound)
}

func (d *Dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	page, ok := ParsePage(r.PathValue("page"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	handler, ok := d.pages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

func (d *Dashboard) renderInformation(w http.ResponseWriter, r *http.Request) {
	view := d.newView(PageInformation, "Rock Mass Classification - Information")
	view.Parameters = parameterViews(ml.DefaultFeatures())
	view.Labels = d.classifier.Labels()
	d.render(w, r, PageInformation, view)
}

func (d *Dashboard) renderAnalysis(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recommendation, err := d.recommend(r.Context(), features)
	if err != nil {
		http.Error(w, "recommendation failed", http.StatusInternalServerError)
		return
	}

	view := d.newView(PageAnalysis, "Interactive Rock Mass Analysis")
	view.Parameters = parameterViews(features)
	view.Recommendation = recommendation
	view.ChartURL = "/api/stress/chart/svg?" + featureQuery(features).Encode()
	d.render(w, r, PageAnalysis, view)
}

func (d *Dashboard) newView(current Page, title string) *pageView {
	nav := make([]navItem, 0, len(pageOrder))
	for _, page := range pageOrder {
		nav = append(nav, navItem{
			Label:  page.Label(),
			Href:   page.Path(),
			Active: page == current,
		})
	}
	return &pageView{Title: title, Nav: nav}
}

func (d *Dashboard) render(w http.ResponseWriter, r *http.Request, page Page, view *pageView) {
	var buf bytes.Buffer
	if err := d.templates[page].ExecuteTemplate(&buf, "layout", view); err != nil {
		d.logger.Error("render page failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("page", page.Slug()),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func parameterViews(features ml.FeatureVector) []parameterView {
	values := features.Values()
	params := ml.Parameters()
	views := make([]parameterView, len(params))
	for i, p := range params {
		views[i] = parameterView{ParameterSpec: p, Value: int(values[i])}
	}
	return views
}

func featureQuery(features ml.FeatureVector) url.Values {
	values := features.Values()
	query := url.Values{}
	for i, key := range ml.FeatureNames() {
		query.Set(key, strconv.Itoa(int(values[i])))
	}
	return query
}
