package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// serverHealth asks a running cliptray for its health. ok is false when
// nothing answers on the configured port.
func serverHealth(cfg *config.Config) (protocol.HealthResponse, bool) {
	srv := cfg.ServerSnapshot()
	host := srv.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	url := "http://" + net.JoinHostPort(host, strconv.Itoa(srv.Port)) + "/health"

	client := &http.Client{Timeout: 750 * time.Millisecond}
	resp, err := client.Get(url)
	if err != nil {
		return protocol.HealthResponse{}, false
	}
	defer resp.Body.Close()

	var h protocol.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil || !h.OK {
		return protocol.HealthResponse{}, false
	}
	return h, true
}

// warnIfServerRunning tells the user that a running instance keeps its own
// copy of the data and will overwrite edits made from the CLI.
func warnIfServerRunning(cfg *config.Config) {
	if _, ok := serverHealth(cfg); !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "Warning: cliptray is running. Its next save overwrites changes made here.")
	fmt.Fprintln(os.Stderr, "Quit the app first, or make the change in the app.")
}

// cliContext tags mutations made from the command line.
func cliContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return store.WithSource(ctx, store.SourceCLI)
}

// exitOnError prints err in user-facing form and exits.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
	os.Exit(1)
}
