// Package callback runs the local loopback server that receives the
// provider redirect during an interactive login.
package callback

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
)

// Server listens on 127.0.0.1 for the OAuth redirect and hands the raw
// redirect parameters to the waiting caller. Validation of the parameters
// (error, state, code) is the token client's job, not the server's.
type Server struct {
	Port     int
	listener net.Listener
	server   *http.Server
	params   chan url.Values
	once     sync.Once
}

// Start begins listening on port, or on a random port when port is 0. Call
// Close when done.
func (s *Server) Start(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	s.listener = ln
	s.Port = ln.Addr().(*net.TCPAddr).Port
	s.params = make(chan url.Values, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.server = &http.Server{Handler: mux}

	go s.server.Serve(ln)
	return nil
}

// RedirectURI returns the full callback URL.
func (s *Server) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", s.Port)
}

// Wait blocks until the redirect arrives or ctx is done, and returns the
// redirect's query parameters unmodified.
func (s *Server) Wait(ctx context.Context) (url.Values, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	case params := <-s.params:
		return params, nil
	}
}

// Close shuts down the callback server.
func (s *Server) Close() {
	s.once.Do(func() {
		if s.server != nil {
			s.server.Close()
		}
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	if oauthErr := params.Get("error"); oauthErr != "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "<html><body><h1>Authorization failed</h1><p>%s: %s</p></body></html>",
			oauthErr, params.Get("error_description"))
	} else {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<html><body><h1>Authentication successful!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	}

	select {
	case s.params <- params:
	default:
	}
}
