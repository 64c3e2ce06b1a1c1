package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/config"
	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/render"
	"github.com/ziadkadry99/dirpage/internal/resolver"
	"github.com/ziadkadry99/dirpage/internal/search"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// SourceHeader reports which source served the directory payload.
const SourceHeader = "X-Directory-Source"

const failMessage = "This directory could not be displayed. Please try again later."

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	key, ok := s.deps.Resolver.Resolve(resolver.FromRequest(r))
	if !ok {
		s.handleRoot(w, r)
		return
	}

	res, err := s.deps.Loader.Load(r.Context(), key)
	if err != nil {
		// Only an aborted request gets here.
		s.logger.Debug("Directory load aborted", zap.String("key", key), zap.Error(err))
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	if res.Err != nil {
		s.logger.Debug("Serving mock directory", zap.String("key", key), zap.Error(res.Err))
	}
	w.Header().Set(SourceHeader, string(res.Source))

	doc := s.newDocument()
	rend := render.New(doc, pageURL(r), render.WithNow(s.deps.Now))
	err = rend.Render(res.Payload)

	if q := r.URL.Query().Get("q"); err == nil && q != "" && rend.State() == render.Content {
		err = applyQuery(doc, rend, q)
	}
	if err == nil {
		err = s.markRender(r.Context(), doc, rend, key)
	}
	if err != nil {
		s.fail(w, r, key, err)
		return
	}
	s.write(w, doc, http.StatusOK)
}

// applyQuery runs the search filter for q over the rendered listings.
func applyQuery(doc *view.Document, rend *render.Renderer, q string) error {
	result := search.NewIndex(rend.Listings()).Filter(q)
	if err := search.Apply(doc, result); err != nil {
		return err
	}
	return doc.SetAttribute(view.Search, "value", q)
}

// markRender tags the content with the resolved key and, for pages with
// listings, stores the rendered set under a fresh render id for the page's
// live search session. A store failure only costs the page its live search.
func (s *Server) markRender(ctx context.Context, doc *view.Document, rend *render.Renderer, key string) error {
	if err := doc.SetAttribute(view.Content, "data-key", key); err != nil {
		return err
	}
	if rend.State() != render.Content {
		return nil
	}

	id := uuid.New().String()
	snapshot := &directory.Payload{Slug: key, Listings: rend.Listings()}
	if err := s.deps.Renders.Set(ctx, id, snapshot, s.deps.RenderTTL); err != nil {
		s.logger.Warn("Storing rendered listings failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return doc.SetAttribute(view.Content, "data-render", id)
}

// handleRoot answers requests that address no directory.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	site := s.deps.Site
	if site.RootPolicy == config.RootRedirect && !sameHost(r.Host, site.RedirectURL) {
		http.Redirect(w, r, site.RedirectURL, http.StatusFound)
		return
	}

	doc := s.newDocument()
	rend := render.New(doc, pageURL(r), render.WithNow(s.deps.Now))
	err := rend.Homepage(render.HomepageContent{
		Title:       site.HomepageTitle,
		Description: site.HomepageDescription,
		Keywords:    site.HomepageKeywords,
	})
	if err != nil {
		s.fail(w, r, "", err)
		return
	}
	s.write(w, doc, http.StatusOK)
}

// fail logs a render failure and answers with the Error state page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, key string, err error) {
	var missing *view.RenderTargetMissingError
	if errors.As(err, &missing) {
		s.logger.Error("Render target missing", zap.String("key", key), zap.String("target", missing.ID))
	} else {
		s.logger.Error("Rendering page failed", zap.String("key", key), zap.Error(err))
	}

	doc := view.NewDocument()
	if ferr := render.New(doc, pageURL(r)).Fail(failMessage); ferr != nil {
		http.Error(w, failMessage, http.StatusInternalServerError)
		return
	}
	s.write(w, doc, http.StatusInternalServerError)
}

// write serializes doc before touching the response so a template failure
// still yields a clean error.
func (s *Server) write(w http.ResponseWriter, doc *view.Document, status int) {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		s.logger.Error("Serializing page failed", zap.Error(err))
		http.Error(w, failMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// pageURL reconstructs the public URL of the requested page without its
// query string.
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return u.String()
}

// sameHost reports whether requestHost is the host of target, ignoring ports
// and case.
func sameHost(requestHost, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	host := requestHost
	if h, _, err := net.SplitHostPort(requestHost); err == nil {
		host = h
	}
	return strings.EqualFold(strings.TrimSuffix(host, "."), u.Hostname())
}
