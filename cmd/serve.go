package cmd

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/roessland/nikeplus/web"
	"github.com/spf13/cobra"
)

// defaultServeAddr keeps the server on the loopback interface. The session
// backend holds a single token, so every client of the server acts as that user.
const defaultServeAddr = "127.0.0.1:8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the Nike+ login flow and a JSON API",
	Long: `Serve /login and /callback for the OAuth2 flow plus a JSON API over the
activity and aggregation gateways. Set the callback to <addr>/callback.

The server is single-user: it serves the one stored Nike+ token to every client
that can reach it, so it listens on 127.0.0.1 unless --addr says otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := newClient(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		listen := getConfigValue(addr, "addr")
		if !isLoopbackAddr(listen) {
			ol.Warn("serving the stored Nike+ token beyond localhost", "addr", listen)
			ol.Progress("Warning: %s is reachable from other hosts and anyone who can reach it acts as the logged-in Nike+ user", listen)
		}

		ol.Progress("Serving on %s (callback %s)", listen, client.Factory.CallbackURL())
		if err := web.NewServer(client.Factory, ol.Component("web")).Run(ctx, listen); err != nil {
			return showFailure(ol, err, "Server stopped")
		}
		return nil
	},
}

// isLoopbackAddr reports whether addr only listens on a loopback interface
func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default: 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}
