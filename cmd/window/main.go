package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/window"
)

var (
	width         int
	height        int
	darkMode      bool
	reducedMotion bool
)

var rootCmd = &cobra.Command{
	Use:   "window",
	Short: "Animated particle field in a desktop window",
	Long: `Opens a resizable window with the drifting particle network.

Keys: t toggles the theme, m toggles reduced motion, q or Esc quits.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVar(&width, "width", 1280, "initial window width")
	rootCmd.Flags().IntVar(&height, "height", 800, "initial window height")
	rootCmd.Flags().BoolVar(&darkMode, "dark", true, "use the dark palette (env DARK_MODE)")
	rootCmd.Flags().BoolVar(&reducedMotion, "reduced-motion", false, "start without animation (env PREFERS_REDUCED_MOTION)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dark") {
		cfg.DarkMode = darkMode
	}
	if cmd.Flags().Changed("reduced-motion") {
		cfg.ReducedMotion = reducedMotion
	}
	logger := cfg.NewLogger(os.Stderr)

	game := window.New(window.Options{
		Width:         width,
		Height:        height,
		DarkMode:      cfg.DarkMode,
		ReducedMotion: cfg.ReducedMotion,
		Logger:        logger,
	})

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Particles")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TargetFPS)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	logger.Info("window closed")
	return nil
}
