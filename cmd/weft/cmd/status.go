package cmd

import (
	"fmt"
	"strings"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show resolved project configuration",
		Long: `Show the configuration weft run would use.

Values come from weft.yaml or weft.toml in the project root when present;
everything else falls back to defaults. The app name defaults to the last
element of the module path in go.mod.`,
		Usage: "weft status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("status takes no arguments (got %q)", args)
	}
	cfg, err := resolveProject()
	if err != nil {
		return err
	}

	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = "(none, using defaults)"
	}
	module := cfg.ModulePath
	if module == "" {
		module = "(no go.mod)"
	}
	assets := cfg.AssetsDir
	if assets == "" {
		assets = "(none)"
	}
	debugAddr := cfg.DebugAddr
	if debugAddr == "" {
		debugAddr = "(off)"
	}

	w := stdout
	fmt.Fprintf(w, "Project: %s\n", cfg.AppName)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s %s\n", "root:", cfg.Root)
	fmt.Fprintf(w, "  %-10s %s\n", "config:", configFile)
	fmt.Fprintf(w, "  %-10s %s\n", "module:", module)
	fmt.Fprintf(w, "  %-10s %dx%d\n", "window:", cfg.Width, cfg.Height)
	fmt.Fprintf(w, "  %-10s %s\n", "log:", strings.ToLower(cfg.LogLevel.String()))
	fmt.Fprintf(w, "  %-10s %s\n", "assets:", assets)
	fmt.Fprintf(w, "  %-10s %s\n", "items:", strings.Join(cfg.Items, ", "))
	fmt.Fprintf(w, "  %-10s %s\n", "inspector:", debugAddr)
	return nil
}
