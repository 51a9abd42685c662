// Package serve provides `coasync serve`, an HTTP/CGI server on
// 127.0.0.1:8080 wired against every module this repository implements:
// the ring gateway, the scheduler, the buffered stream layer, the
// filesystem wrappers, the HTTP router and static/directory handlers, and
// the CGI engine.
package serve

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/co-async-go/co-async/cgi"
	coascmd "github.com/co-async-go/co-async/cmd"
	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/httpserver"
	"github.com/co-async-go/co-async/lib/clog"
	"github.com/co-async-go/co-async/ring"
	"github.com/co-async-go/co-async/sched"
)

var (
	addr string
	port int
	root string
)

func init() {
	coascmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1", "address to bind")
	flags.IntVar(&port, "port", 8080, "port to listen on")
	flags.StringVar(&root, "root", ".", "directory served at /")
}

var commandDefinition = &cobra.Command{
	Use:   "serve",
	Short: "Run the example HTTP/CGI server",
	Long: `serve binds an HTTP/1.1 listener and serves static files,
directory listings, and CGI scripts out of --root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func parseIPv4(s string) [4]byte {
	var out [4]byte
	if ip := net.ParseIP(s); ip != nil {
		copy(out[:], ip.To4())
	}
	return out
}

func run() error {
	scheduler := sched.NewScheduler(nil)
	r, err := ring.Open(ring.DefaultOptions, scheduler)
	if err != nil {
		return err
	}
	defer r.Close()
	scheduler.SetWaiter(r)

	fsRoot := fsys.NewRoot(r)
	router := httpserver.NewRouter()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cgiExec := func(resp *httpserver.Responder, req *httpserver.Request, scriptPath string) error {
		return cgi.Execute(ctx, fsRoot, resp, req, scriptPath)
	}

	router.Handle("GET", "/*", func(resp *httpserver.Responder, req *httpserver.Request) error {
		diskPath := root + req.URI.Path
		return httpserver.ServePath(ctx, resp, req, fsRoot, req.URI.Path, diskPath, cgiExec)
	})

	tok := sched.NewCancelToken()
	go func() {
		<-ctx.Done()
		tok.Cancel()
	}()

	srv, err := httpserver.Listen(fsRoot, scheduler, router, httpserver.ServerOptions{
		Addr: parseIPv4(addr),
		Port: port,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	clog.Infof("serving %s on %s:%d", root, addr, port)

	task := sched.Spawn(func() (struct{}, error) {
		return struct{}{}, srv.Serve(ctx, tok)
	})
	_, err = sched.Join(scheduler, task)
	return err
}
