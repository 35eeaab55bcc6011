package config

// This file registers the CLI flags and layers them with environment
// variables and an optional config file through viper.
// Precedence: positional args > flags > GIFCLIP_* env > config file > defaults.

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (e.g. GIFCLIP_FPS).
const EnvPrefix = "GIFCLIP"

// Flag names shared by the flag set and the viper keys.
const (
	FlagInput   = "input"
	FlagOutput  = "output"
	FlagStart   = "start"
	FlagStop    = "stop"
	FlagFPS     = "fps"
	FlagScale   = "scale"
	FlagLoop    = "loop"
	FlagDryRun  = "dry-run"
	FlagCheck   = "check"
	FlagVerbose = "verbose"
	FlagLog     = "log"
	FlagConfig  = "config"
	FlagColor   = "color"
	FlagNoColor = "no-color"
)

// layeredKeys are the settings that may come from env or the config file.
// --check, --config and the color switches are flag-only.
var layeredKeys = []string{
	FlagInput, FlagOutput, FlagStart, FlagStop, FlagFPS, FlagScale,
	FlagLoop, FlagDryRun, FlagVerbose, FlagLog,
}

// DefineFlags registers every gifclip flag on fs with defaults taken from
// [DefaultConfig].
func DefineFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	// Paths
	fs.StringP(FlagInput, "i", "", "Source video (alternative to the first positional arg)")
	fs.StringP(FlagOutput, "o", "", "Destination GIF (alternative to the second positional arg)")

	// Clip selection
	fs.Float64(FlagStart, d.Start, "Start time in seconds")
	fs.Float64(FlagStop, 0, "Stop time in seconds (default: end of video)")

	// GIF output
	fs.Int(FlagFPS, d.FPS, "Frames per second of the output GIF")
	fs.Float64(FlagScale, d.Scale, "Resize factor applied to width and height")
	fs.Int(FlagLoop, d.Loop, "GIF loop count: 0 = forever, -1 = play once")

	// Behavior
	fs.BoolP(FlagDryRun, "d", false, "Print the ffmpeg command; do not write the GIF")
	fs.BoolP(FlagCheck, "c", false, "Run ffmpeg/ffprobe diagnostics and exit")

	// Display and logging
	fs.BoolP(FlagVerbose, "v", false, "Verbose output (debug lines and ffmpeg stats)")
	fs.StringP(FlagLog, "l", "", "Append logs to file")
	fs.String(FlagConfig, "", "Config file (yaml, toml or json)")
	fs.Bool(FlagColor, false, "Force colored logs")
	fs.Bool(FlagNoColor, false, "Disable colored logs")
}

// Load builds a Config from a parsed flag set and the remaining positional
// args. Unless --check is set, the source and destination are resolved with
// [ResolvePaths] and a missing one is an error wrapping ErrMissingArgument.
// A layered value that does not parse as its flag's type is an error too.
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range layeredKeys {
		f := fs.Lookup(key)
		if f == nil {
			return cfg, fmt.Errorf("flag --%s not defined", key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return cfg, fmt.Errorf("bind --%s: %w", key, err)
		}
	}

	cfg.ConfigFile, _ = fs.GetString(FlagConfig)
	if cfg.ConfigFile != "" {
		v.SetConfigFile(cfg.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %q: %w", cfg.ConfigFile, err)
		}
	}

	r := layered{v: v}
	cfg.Input = r.getString(FlagInput)
	cfg.Output = r.getString(FlagOutput)
	cfg.Start = r.getFloat(FlagStart)
	if v.IsSet(FlagStop) {
		stop := r.getFloat(FlagStop)
		cfg.Stop = &stop
	}
	cfg.FPS = r.getInt(FlagFPS)
	cfg.Scale = r.getFloat(FlagScale)
	cfg.Loop = r.getInt(FlagLoop)
	cfg.DryRun = r.getBool(FlagDryRun)
	cfg.Verbose = r.getBool(FlagVerbose)
	cfg.LogFile = r.getString(FlagLog)
	if r.err != nil {
		return cfg, r.err
	}
	cfg.CheckOnly, _ = fs.GetBool(FlagCheck)

	applyColorFlags(fs, &cfg)

	// Paths are only required when there is something to convert.
	if cfg.CheckOnly {
		return cfg, nil
	}
	var posSource, posDest string
	if len(args) > 0 {
		posSource = args[0]
	}
	if len(args) > 1 {
		posDest = args[1]
	}
	source, dest, err := ResolvePaths(posSource, posDest, cfg.Input, cfg.Output)
	if err != nil {
		return cfg, err
	}
	cfg.Input, cfg.Output = source, dest
	return cfg, nil
}

// layered reads viper keys with strict conversion. Values from the
// environment or the config file arrive as strings or loosely typed YAML,
// and viper's Get* helpers turn anything unparseable into a zero value.
// The first conversion error is kept; later reads are skipped.
type layered struct {
	v   *viper.Viper
	err error
}

func (r *layered) convert(key string, fn func(any) error) {
	if r.err != nil {
		return
	}
	if err := fn(r.v.Get(key)); err != nil {
		r.err = fmt.Errorf("--%s: %w", key, err)
	}
}

func (r *layered) getString(key string) (s string) {
	r.convert(key, func(raw any) (err error) { s, err = cast.ToStringE(raw); return })
	return s
}

func (r *layered) getFloat(key string) (f float64) {
	r.convert(key, func(raw any) (err error) { f, err = cast.ToFloat64E(raw); return })
	return f
}

func (r *layered) getInt(key string) (n int) {
	r.convert(key, func(raw any) (err error) { n, err = cast.ToIntE(raw); return })
	return n
}

func (r *layered) getBool(key string) (b bool) {
	r.convert(key, func(raw any) (err error) { b, err = cast.ToBoolE(raw); return })
	return b
}

// applyColorFlags maps --color/--no-color onto ColorMode; --no-color wins.
func applyColorFlags(fs *pflag.FlagSet, cfg *Config) {
	noColor, _ := fs.GetBool(FlagNoColor)
	forceColor, _ := fs.GetBool(FlagColor)
	if noColor {
		cfg.ColorMode = ColorNever
	} else if forceColor {
		cfg.ColorMode = ColorAlways
	}
}
