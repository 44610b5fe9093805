package docstore

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Request is one logged request.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`
}

// Server is an in-memory document store.
type Server struct {
	mu         sync.Mutex
	root       any
	deny       bool
	delay      time.Duration
	arrayPaths map[string]bool
	requests   []Request

	engine *gin.Engine
}

// New creates an empty store with its gin router.
func New() *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{arrayPaths: map[string]bool{}}
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.Any("/*path", s.handle)
	s.engine = r
	return s
}

// Handler returns the HTTP handler serving the store.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetDeny makes every request fail with 401, as locked security rules do.
func (s *Server) SetDeny(deny bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deny = deny
}

// SetDelay holds every response for d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// ServeAsArray makes GET on path return its children as a JSON array
// instead of an object keyed by id.
func (s *Server) ServeAsArray(path string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrayPaths[strings.Join(splitPath(path), "/")] = on
}

// Seed stores the JSON encoding of v at path.
func (s *Server) Seed(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	val, err := decodeValue(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = set(s.root, splitPath(path), val)
	return nil
}

// Value returns the JSON encoding of what is stored at path ("null" when
// nothing is).
func (s *Server) Value(path string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _ := json.Marshal(render(lookup(s.root, splitPath(path)), false))
	return data
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many logged requests match method and path.
// An empty method matches any method.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && r.Path == path {
			n++
		}
	}
	return n
}

// ResetLog clears the request log.
func (s *Server) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		req := Request{Method: c.Request.Method, Path: c.Request.URL.Path, Status: c.Writer.Status()}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		slog.Debug("docstore request",
			"method", req.Method,
			"path", req.Path,
			"status", req.Status,
			"latency", time.Since(start),
		)
	}
}

func (s *Server) handle(c *gin.Context) {
	s.mu.Lock()
	deny, delay := s.deny, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
	}
	if deny {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Permission denied"})
		return
	}

	parts := splitPath(c.Param("path"))

	switch c.Request.Method {
	case http.MethodGet:
		s.mu.Lock()
		forceArray := s.arrayPaths[strings.Join(parts, "/")]
		out := render(lookup(s.root, parts), forceArray)
		s.mu.Unlock()
		c.JSON(http.StatusOK, out)

	case http.MethodPut:
		val, ok := readBody(c)
		if !ok {
			return
		}
		s.mu.Lock()
		s.root = set(s.root, parts, val)
		out := render(lookup(s.root, parts), false)
		s.mu.Unlock()
		c.JSON(http.StatusOK, out)

	case http.MethodPatch:
		val, ok := readBody(c)
		if !ok {
			return
		}
		members, isObj := val.(map[string]any)
		if !isObj {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data; PATCH requires an object"})
			return
		}
		s.mu.Lock()
		for k, v := range members {
			s.root = set(s.root, append(append([]string{}, parts...), k), v)
		}
		s.mu.Unlock()
		c.JSON(http.StatusOK, render(val, false))

	case http.MethodDelete:
		s.mu.Lock()
		s.root = set(s.root, parts, nil)
		s.mu.Unlock()
		c.JSON(http.StatusOK, nil)

	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func readBody(c *gin.Context) (any, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
		return nil, false
	}
	val, err := decodeValue(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data; couldn't parse JSON object"})
		return nil, false
	}
	return val, true
}
