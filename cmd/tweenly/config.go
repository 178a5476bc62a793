package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/appconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the tweenly config file",
	}
	cmd.AddCommand(newConfigDefaultCmd())
	return cmd
}

func newConfigDefaultCmd() *cobra.Command {
	var outPath string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Print or write the default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				data, err := appconfig.DefaultYAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			path, err := appconfig.WriteDefault(outPath, overwrite)
			if err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("config wrote", "path", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing file")
	return cmd
}
