package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/appconfig"
	"pkt.systems/tweenly/internal/format"
	"pkt.systems/tweenly/internal/logx"
	"pkt.systems/tweenly/internal/scene"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var visibleOnly bool
	cmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "Run a scene script and print shape states",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			script, err := loadScene(path)
			if err != nil {
				return err
			}
			ctx := logx.ContextWithSceneLogger(cmd.Context(), logger, script.Name)
			runner, err := scene.NewRunner(ctx, script, cfg.ControllerConfig())
			if err != nil {
				return err
			}
			snaps, err := runner.Run(ctx)
			renderer := format.NewPlainRenderer()
			renderer.Hidden = !visibleOnly
			if _, werr := fmt.Fprint(cmd.OutOrStdout(), renderer.FormatAll(snaps)); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}
			logger.Debug("scene run ok", "scene", script.Name, "snapshots", len(snaps))
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().BoolVar(&visibleOnly, "visible", false, "only print visible shapes")
	return cmd
}
