// Command spin spins a wheel in the terminal and optionally writes its image.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/render"
	"spinwheel/internal/wheel"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(os.Args[1:], sugar); err != nil {
		sugar.Errorw("spin failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, log *zap.SugaredLogger) error {
	fs := flag.NewFlagSet("spin", flag.ContinueOnError)
	options := fs.String("options", "", "options separated by commas or newlines")
	locale := fs.String("locale", "", "locale for placeholders and messages")
	settingsPath := fs.String("settings", "", "wheel settings YAML file")
	out := fs.String("out", "", "write the wheel as PNG to this file")
	size := fs.Int("size", 0, "PNG size in pixels")
	font := fs.String("font", "", "TrueType font for labels")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		return err
	}
	loc := settings.LocaleFor(*locale)

	text := strings.ReplaceAll(*options, ",", "\n")
	if strings.TrimSpace(text) == "" {
		text = loc.DemoText()
	}
	ctl := wheel.NewController(wheel.Settings{
		Duration:    settings.SpinDuration(),
		ExtraTurns:  settings.Spin.ExtraTurns,
		Placeholder: loc.PlaceholderPair(),
	}, rand.New(rand.NewSource(*seed)), text)

	start := time.Now().UTC()
	spin, _, err := ctl.Spin(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, loc.Messages.TooFew)
		return err
	}
	res, _ := ctl.AdvanceIfNeeded(spin.EndsAt)
	log.Debugw("spin", "extra", spin.ExtraDegrees, "total", spin.TotalDegrees, "rotation", res.ActualRotation, "pointer", res.PointerAngle)
	fmt.Println(loc.Messages.WinnerPrefix + res.Winner)

	if *out == "" {
		return nil
	}
	if *size <= 0 {
		*size = settings.Render.Size
	}
	style, err := render.NewStyle(settings.Render.Palette)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := (render.Renderer{Style: style, FontPath: *font}).RenderPNG(f, spin.Options, *size); err != nil {
		return err
	}
	log.Infow("wrote wheel", "file", *out, "size", *size)
	return nil
}
