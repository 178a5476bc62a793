package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tweenly/internal/appconfig"
	"pkt.systems/tweenly/internal/preview"
	"pkt.systems/tweenly/internal/scene"
)

func newPreviewCmd() *cobra.Command {
	var cfgPath string
	var at float64
	cmd := &cobra.Command{
		Use:   "preview [scene.yaml]",
		Short: "Preview a scene in the terminal",
		Long:  "Preview a scene in the terminal.\n\nKeys: space play/pause, left/right scrub, home rewind, u undo, r redo, q quit.",
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
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			view, err := preview.New(screen, preview.Options{
				FrameRate: cfg.Animation.FrameRate,
				Width:     cfg.Preview.Width,
				Height:    cfg.Preview.Height,
				Logger:    logger,
			})
			if err != nil {
				screen.Fini()
				return err
			}
			runner, err := scene.NewRunner(cmd.Context(), script, cfg.ControllerConfig(), scene.WithScheduler(view, nil))
			if err != nil {
				screen.Fini()
				return err
			}
			ctrl := runner.Controller()
			if err := view.Attach(ctrl); err != nil {
				screen.Fini()
				return err
			}
			defer view.Detach()
			ctrl.NewClockTime(at)
			logger.Debug("preview start", "scene", script.Name, "shapes", len(ctrl.Shapes()))
			return view.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().Float64Var(&at, "at", 0, "initial clock time in seconds")
	return cmd
}
