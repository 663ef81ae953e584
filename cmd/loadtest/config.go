package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/gdmec07150948/NetX/core/hub"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [file]",
		Short: "Validate a hub config file and print it with defaults applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := hub.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if cfg.Scheduler.Kind == "" {
				cfg.Scheduler.Kind = hub.SchedulerGo
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
