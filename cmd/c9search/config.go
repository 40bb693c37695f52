package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			data, err := e.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(data)
			return err
		},
	}
	c.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			p := e.cfgPath
			if p == "" {
				p = config.Path()
			}
			fmt.Fprintln(c.OutOrStdout(), p)
		},
	})
	return c
}
