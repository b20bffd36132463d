package config

import (
	"github.com/spf13/pflag"
)

// ParseFlags builds the configuration from the command line. The file named
// by --config is applied over the defaults and every flag given explicitly
// is applied over the file.
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("nengine", pflag.ContinueOnError)

	configPath := fs.StringP("config", "c", "", "Lua file returning a configuration table")
	scripts := fs.StringArrayP("script", "s", nil, "script to run, repeatable; .lua files run as Lua, others as JavaScript")
	title := fs.String("title", "", "window title")
	width := fs.Int("width", 0, "window width")
	height := fs.Int("height", 0, "window height")
	fullscreen := fs.Bool("fullscreen", false, "open on the primary monitor")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFile := fs.String("log-file", "", "append log entries to this file")
	mute := fs.Bool("mute", false, "do not play sounds")
	retry := fs.Bool("retry-failed-scripts", true, "run a script that failed again on every frame until it changes")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		if err := Load(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if fs.Changed("script") {
		cfg.Scripts = *scripts
	}
	if fs.Changed("title") {
		cfg.Window.Title = *title
	}
	if fs.Changed("width") {
		cfg.Window.Width = *width
	}
	if fs.Changed("height") {
		cfg.Window.Height = *height
	}
	if fs.Changed("fullscreen") {
		cfg.Window.Fullscreen = *fullscreen
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = *logFile
	}
	if fs.Changed("mute") {
		cfg.Mute = *mute
	}
	if fs.Changed("retry-failed-scripts") {
		cfg.RetryFailedScripts = *retry
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
