// Package devserver serves the output tree during development and pushes
// reload notifications to connected browsers over a websocket.
//
// HTML responses get a small client script appended before </body>; the
// script connects back to /__sitepipe/ws and either reloads the page or
// swaps a stylesheet in place, depending on the message.
package devserver

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/event"
	"github.com/sitepipe/sitepipe/internal/logging"
)

// Endpoints served next to the output tree.
const (
	SocketPath = "/__sitepipe/ws"
	ScriptPath = "/__sitepipe/client.js"
)

//go:embed client.js
var clientScript []byte

var scriptTag = []byte(`<script src="` + ScriptPath + `"></script>`)

// Config configures the dev server.
type Config struct {
	Host     string
	Port     int
	CORS     bool
	OpenPath string
}

// Option configures a Server.
type Option func(*Server)

// WithBus sets the bus that receives server and reload events.
func WithBus(bus *event.Bus) Option {
	return func(s *Server) { s.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server is the development HTTP server.
type Server struct {
	cfg    Config
	files  afero.Fs
	static http.Handler
	hub    *Hub
	bus    *event.Bus
	logger *logging.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// New creates a Server for the output tree at root on fsys. Nothing listens
// until Start.
func New(cfg Config, fsys afero.Fs, root string, opts ...Option) *Server {
	files := afero.NewBasePathFs(fsys, root)
	s := &Server{
		cfg:    cfg,
		files:  files,
		static: http.FileServer(afero.NewHttpFs(files)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	s.hub = NewHub(s.logger)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(SocketPath, s.hub)
	mux.HandleFunc(ScriptPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(clientScript)
	})
	mux.HandleFunc("/", s.serveFile)

	var h http.Handler = mux
	h = noCache(h)
	if s.cfg.CORS {
		h = cors(h)
	}
	return h
}

// serveFile serves HTML with the client script injected and everything
// else straight from the output tree.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	if info, err := s.files.Stat(name); err == nil && info.IsDir() {
		name = path.Join(name, "index.html")
	}
	if path.Ext(name) != ".html" {
		s.static.ServeHTTP(w, r)
		return
	}

	data, err := afero.ReadFile(s.files, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	body := InjectScript(data)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

// InjectScript inserts the reload client tag before the last </body>, or
// appends it when the document has none.
func InjectScript(html []byte) []byte {
	lower := bytes.ToLower(html)
	i := bytes.LastIndex(lower, []byte("</body>"))
	if i < 0 {
		return append(append([]byte{}, html...), scriptTag...)
	}
	out := make([]byte, 0, len(html)+len(scriptTag))
	out = append(out, html[:i]...)
	out = append(out, scriptTag...)
	out = append(out, html[i:]...)
	return out
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}

// Start listens and serves in the background. It returns once the listener
// is bound. The server shuts down when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return fmt.Errorf("devserver: already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devserver: listen %s: %w", addr, err)
	}

	s.listener = ln
	s.done = make(chan struct{})
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("dev server stopped", "error", err.Error())
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Shutdown(shutdownCtx)
		case <-s.done:
		}
	}()

	url := s.urlLocked()
	s.logger.Info("dev server listening", "url", url)
	s.bus.Publish(event.NewServerListeningEvent(url))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the browse URL, including the configured open path.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

func (s *Server) urlLocked() string {
	if s.listener == nil {
		return ""
	}
	open := s.cfg.OpenPath
	if open == "" {
		open = "/"
	}
	if !strings.HasPrefix(open, "/") {
		open = "/" + open
	}
	return "http://" + s.listener.Addr().String() + open
}

// Clients returns the number of connected reload clients.
func (s *Server) Clients() int {
	return s.hub.Len()
}

// ReloadAll asks every client to reload the page.
func (s *Server) ReloadAll() {
	n := s.hub.Broadcast(Message{Type: MessageReload})
	s.logger.Debug("reload sent", "clients", n)
	s.bus.Publish(event.NewReloadSentEvent(MessageReload, nil, n))
}

// InjectAsset pushes a rebuilt stylesheet to every client. Relative url()
// references are rebased onto the stylesheet's directory first.
func (s *Server) InjectAsset(assetPath string, content []byte) {
	content = RebaseURLs(assetPath, content)
	n := s.hub.Broadcast(Message{Type: MessageInject, Path: assetPath, Content: string(content)})
	s.logger.Debug("asset injected", "path", assetPath, "clients", n)
	s.bus.Publish(event.NewReloadSentEvent(MessageInject, []string{assetPath}, n))
}

// Shutdown disconnects clients and stops the HTTP server. It is safe to
// call more than once and before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	select {
	case <-done:
	case <-ctx.Done():
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
