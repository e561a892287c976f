package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nstehr/uburu/config"
	"github.com/nstehr/uburu/ipc"
	"github.com/nstehr/uburu/metrics"
	"github.com/nstehr/uburu/tools"
)

const banner = `
██╗   ██╗██████╗ ██╗   ██╗██████╗ ██╗   ██╗
██║   ██║██╔══██╗██║   ██║██╔══██╗██║   ██║
██║   ██║██████╔╝██║   ██║██████╔╝██║   ██║
██║   ██║██╔══██╗██║   ██║██╔══██╗██║   ██║
╚██████╔╝██████╔╝╚██████╔╝██║  ██║╚██████╔╝
 ╚═════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝ ╚═════╝

Team-Aware Alliance Intelligence`

const shutdownTimeout = 5 * time.Second

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent on the game socket, admin HTTP and MCP transports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(*configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), banner)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// serve runs every configured transport until ctx is cancelled or one of
// them fails.
func (a *app) serve(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	slog.Info("starting uburu", "version", Version, "stableID", a.cfg.SelfID(), "mode", a.cfg.Mode)

	g, ctx := errgroup.WithContext(ctx)
	mcpServer := tools.NewServer(a.agent, Version)

	if a.cfg.SocketPath != "" {
		listener, err := listenUnix(a.cfg.SocketPath)
		if err != nil {
			return err
		}
		g.Go(func() error { return a.acceptLoop(ctx, g, listener) })
	}

	if a.cfg.HTTPAddr != "" {
		var mcpHandler http.Handler
		if a.cfg.MCPTransport == config.TransportHTTP {
			mcpHandler = server.NewStreamableHTTPServer(mcpServer)
		}
		srv := &http.Server{
			Addr:              a.cfg.HTTPAddr,
			Handler:           metrics.NewRouter(a.agent, mcpHandler),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			slog.Info("admin http listening", "addr", a.cfg.HTTPAddr, "mcp", mcpHandler != nil)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if a.cfg.MCPTransport == config.TransportStdio {
		g.Go(func() error {
			slog.Info("mcp listening on stdio")
			err := server.NewStdioServer(mcpServer).Listen(ctx, stdin, stdout)
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp stdio: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()
	slog.Info("shutting down")
	return err
}

// listenUnix binds the game socket, clearing a file left behind by an
// unclean shutdown.
func listenUnix(path string) (net.Listener, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clean up socket %s: %w", path, err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket %s: %w", path, err)
	}
	slog.Info("listening on domain socket", "path", path)
	return listener, nil
}

func (a *app) acceptLoop(ctx context.Context, g *errgroup.Group, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()
	defer os.Remove(a.cfg.SocketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("game socket closed: %w", err)
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		slog.Info("new connection accepted")
		g.Go(func() error {
			c := ipc.NewConnection(conn, a.agent.Handlers())
			release := context.AfterFunc(ctx, func() { _ = c.Close() })
			defer release()
			c.ReadLoop()
			return nil
		})
	}
}
