package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/aschmelyun/scenematch/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func usage(fs *flag.FlagSet) {
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Usage: scenematch [options] [<control-video> <reference-video>]"))
	fmt.Println(BulletStyle.Render("│"))
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Options:"))
	fs.VisitAll(func(f *flag.Flag) {
		name := "--" + f.Name
		spaces := strings.Repeat(" ", max(12-len(name), 1))
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render(name) + DimTextStyle.Render(spaces+f.Usage))
	})
	fmt.Println(BulletStyle.Render("│"))
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Requirements:"))

	dependencies := []string{config.DefaultMpvBinary}
	for _, dependency := range dependencies {
		status := "✔ installed"
		if !checkDependency(dependency) {
			status = "✗ missing"
		}
		spaces := strings.Repeat(" ", 10-len(dependency))
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render(dependency) + DimTextStyle.Render(spaces+status))
	}

	fmt.Println(BulletStyle.Render("│"))
	fmt.Println(BulletStyle.Render("└") + TextStyle.Render("Supported formats:") + DimTextStyle.Render(" "+strings.Join(validExtensions, ", ")))
}

func main() {
	fmt.Println(BulletStyle.Render("┌") + TitleStyle.Render("scenematch"))

	if err := run(); err != nil {
		fmt.Println(BulletStyle.Render("└") + ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], config.DefaultEnvFile, usage)
	if errors.Is(err, config.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if cfg.Version {
		fmt.Println(BulletStyle.Render("└") + TextStyle.Render(config.Version+" ("+config.GitCommit+")"))
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("scenematch needs an interactive terminal")
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	control, reference, err := resolveMedia(cfg.Media, wd, cfg.ControlPrefix, cfg.ReferencePrefix)
	if err != nil {
		return err
	}
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Control:   ") + DimTextStyle.Render(control))
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Reference: ") + DimTextStyle.Render(reference))

	logFile, err := tea.LogToFile(cfg.LogFile, "scenematch")
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}
	defer logFile.Close()

	logger := logging.NewLogger(cfg.LogLevel, logFile)
	logger.Info("starting",
		"version", config.Version,
		"mode", string(cfg.Mode),
		"control", control,
		"reference", reference,
	)

	a, err := newApp(context.Background(), cfg, control, reference, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer a.Close()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	p := tea.NewProgram(
		newModel(a, width, height),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	if m, ok := final.(model); ok && len(m.statuses) > 0 {
		fmt.Print(styleOutput(m.statuses))
	}
	logger.Info("stopped")
	return nil
}
