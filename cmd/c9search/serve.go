package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/searchd"
)

func newServeCmd(e *env) *cobra.Command {
	var listen, root, prefix, token string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the bundled search backend over a local directory",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := e.cfg.Serve
			flags := c.Flags()
			if flags.Changed("listen") {
				cfg.Listen = listen
			}
			if flags.Changed("root") {
				cfg.Root = root
			}
			if flags.Changed("prefix") {
				cfg.Prefix = prefix
			}
			if flags.Changed("serve-token") {
				cfg.Token = token
			}

			srv, err := searchd.New(searchd.Options{
				Root:       cfg.Root,
				Prefix:     cfg.Prefix,
				Token:      cfg.Token,
				Retention:  cfg.Retention,
				MaxChunk:   cfg.MaxChunkKB << 10,
				SubmitRate: cfg.SubmitRate,
				Logger:     e.stderrLogger(),
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}
	c.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config, 127.0.0.1:8181)")
	c.Flags().StringVar(&root, "root", "", "Directory to serve")
	c.Flags().StringVar(&prefix, "prefix", "", "Client visible path of the root, e.g. /workspace")
	c.Flags().StringVar(&token, "serve-token", "", "Token clients must present")
	return c
}
