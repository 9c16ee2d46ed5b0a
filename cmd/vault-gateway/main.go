// Package main implements the vault-gateway JSON-RPC server: a remote
// bridge exposing an Obsidian-style note vault to AI tool-calling agents
// over HTTP, in place of the stdio MCP transport this server was grown
// from.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taigrr/vault-gateway/internal/cache"
	"github.com/taigrr/vault-gateway/internal/discovery"
	"github.com/taigrr/vault-gateway/internal/frontmatter"
	"github.com/taigrr/vault-gateway/internal/localfs"
	"github.com/taigrr/vault-gateway/internal/resource"
	"github.com/taigrr/vault-gateway/internal/rpc"
	"github.com/taigrr/vault-gateway/internal/template"
	"github.com/taigrr/vault-gateway/internal/tools"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

const tokenEnvVar = "VAULT_GATEWAY_TOKEN"

type serveFlags struct {
	vaultRoot     string
	upstreamURL   string
	upstreamToken string
	toolPrefix    string
	ttlStructure  time.Duration
	ttlNotes      time.Duration
	batchSize     int
	snippetRadius int
	listen        string
}

func main() {
	var flags serveFlags

	serve := &cobra.Command{
		Use:   "serve",
		Short: "run the vault-gateway JSON-RPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	serve.Flags().StringVar(&flags.vaultRoot, "vault-root", "", "local copy of the vault, scanned when the upstream listing fails (empty = no fallback)")
	serve.Flags().StringVar(&flags.upstreamURL, "upstream-url", "http://127.0.0.1:27124", "base URL of the upstream vault plugin's REST API")
	serve.Flags().StringVar(&flags.upstreamToken, "upstream-token", "", "bearer token for the upstream plugin (falls back to "+tokenEnvVar+")")
	serve.Flags().StringVar(&flags.toolPrefix, "tool-prefix", tools.DefaultPrefix, "prefix applied to every tool name except ping")
	serve.Flags().DurationVar(&flags.ttlStructure, "ttl-structure", cache.DefaultTTLStructure, "cache lifetime for the vault structure snapshot")
	serve.Flags().DurationVar(&flags.ttlNotes, "ttl-notes", cache.DefaultTTLNotes, "cache lifetime for the discovered note list")
	serve.Flags().IntVar(&flags.batchSize, "batch-size", 0, "concurrent upstream fan-out ceiling (0 = spec default of 15)")
	serve.Flags().IntVar(&flags.snippetRadius, "snippet-radius", 0, "characters kept on either side of a keyword match (0 = spec default of 80)")
	serve.Flags().StringVar(&flags.listen, "listen", ":8181", "address the JSON-RPC endpoint listens on")

	root := &cobra.Command{
		Use:   "vault-gateway",
		Short: "JSON-RPC gateway exposing an Obsidian-style note vault to AI agents",
		Long: `vault-gateway is a remote JSON-RPC bridge in front of an Obsidian-style
note vault. It talks to the vault through an upstream REST plugin,
enforces structured header conventions, and exposes a fixed catalogue
of tools and resources to any JSON-RPC-speaking AI harness.`,
	}
	root.AddCommand(serve)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func runServe(ctx context.Context, flags serveFlags) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	token := flags.upstreamToken
	if token == "" {
		token = os.Getenv(tokenEnvVar)
	}
	if token == "" {
		return fmt.Errorf("no upstream token: pass --upstream-token or set %s", tokenEnvVar)
	}

	vc := vaultclient.New(flags.upstreamURL, token, nil, log)
	fm := frontmatter.New()
	disc := discovery.New(vc, fm).WithBatchSize(flags.batchSize).WithSnippetRadius(flags.snippetRadius).WithLogger(log)
	if flags.vaultRoot != "" {
		disc = disc.WithFallback(localfs.New(flags.vaultRoot))
	}
	tmpl := template.New(fm)
	c := cache.New(flags.ttlStructure, flags.ttlNotes)

	toolRegistry := tools.New(flags.toolPrefix, vc, c, disc, tmpl, fm, log)
	resourceRouter := resource.New(vc, disc, c, fm)
	server := rpc.New(toolRegistry, resourceRouter, "vault-gateway", version, log)

	httpServer := &http.Server{
		Addr:    flags.listen,
		Handler: server,
	}

	log.Info().
		Str("listen", flags.listen).
		Str("upstream", flags.upstreamURL).
		Str("vault_root", flags.vaultRoot).
		Msg("vault-gateway listening")

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("vault-gateway server: %w", err)
		}
		return nil
	}
}
