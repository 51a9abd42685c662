package httpserver

import (
	"context"

	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/lib/clog"
	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

// ServerOptions configures the accept loop as a plain struct with
// documented zero-value defaults.
type ServerOptions struct {
	// Addr is the IPv4 address to bind, zero meaning 0.0.0.0.
	Addr [4]byte
	// Port to listen on.
	Port int
	// Backlog is the listen(2) backlog; zero defaults to 128.
	Backlog int
}

const defaultBacklog = 128

// Server binds a listener and drives the accept loop, spawning one task
// per accepted connection.
type Server struct {
	root   *fsys.Root
	sched  *sched.Scheduler
	router *Router
	ln     *fsys.Listener
}

// Listen binds opts.Addr:opts.Port and returns a Server ready to Serve.
func Listen(root *fsys.Root, s *sched.Scheduler, router *Router, opts ServerOptions) (*Server, error) {
	backlog := opts.Backlog
	if backlog == 0 {
		backlog = defaultBacklog
	}
	ln, err := root.ListenerBind(opts.Addr, opts.Port, backlog)
	if err != nil {
		return nil, err
	}
	return &Server{root: root, sched: s, router: router, ln: ln}, nil
}

func (srv *Server) Close() error {
	return srv.ln.Close()
}

// Serve accepts connections until tok is canceled, spawning each onto its
// own task so a slow client cannot stall newer ones. Accept errors are
// logged and the loop continues; cancellation ends the loop cleanly.
func (srv *Server) Serve(ctx context.Context, tok *sched.CancelToken) error {
	for {
		sock, err := srv.ln.Accept(tok, nil)
		if err != nil {
			if sched.KindOf(err) == sched.Canceled {
				return nil
			}
			clog.Errorf("httpserver: accept failed: %v", err)
			continue
		}
		sched.Spawn(func() (struct{}, error) {
			ch := stream.NewSocketChannel(sock)
			s := stream.New(ch, true)
			HandleConn(ctx, s, srv.router)
			return struct{}{}, nil
		})
	}
}
