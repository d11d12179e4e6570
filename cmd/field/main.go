package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/loop"
	"golang.org/x/term"
)

var (
	darkMode      bool
	reducedMotion bool
	dpr           float64
)

var rootCmd = &cobra.Command{
	Use:   "field",
	Short: "Animated particle field in your terminal",
	Long: `Renders the drifting particle network in the terminal using truecolor
half-block cells. Move the mouse to push particles away.

Keys: t toggles the theme, m toggles reduced motion, q quits.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&darkMode, "dark", true, "use the dark palette (env DARK_MODE)")
	rootCmd.Flags().BoolVar(&reducedMotion, "reduced-motion", false, "start without animation (env PREFERS_REDUCED_MOTION)")
	rootCmd.Flags().Float64Var(&dpr, "dpr", 1, "device pixel ratio, clamped to [1,2] (env DEVICE_PIXEL_RATIO)")
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
	// Flags win over the environment only when given.
	if cmd.Flags().Changed("dark") {
		cfg.DarkMode = darkMode
	}
	if cmd.Flags().Changed("reduced-motion") {
		cfg.ReducedMotion = reducedMotion
	}
	if cmd.Flags().Changed("dpr") {
		cfg.DevicePixelRatio = dpr
	}

	logger, closeLog, err := cfg.OpenLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := loop.NewHost(bufio.NewReader(os.Stdin), os.Stdout, loop.Options{
		DarkMode:         cfg.DarkMode,
		ReducedMotion:    cfg.ReducedMotion,
		DevicePixelRatio: cfg.DevicePixelRatio,
		Logger:           logger,
	})
	if err := host.Run(ctx); err != nil {
		logger.Error("field stopped", "err", err)
		return fmt.Errorf("run field: %w", err)
	}
	return nil
}
