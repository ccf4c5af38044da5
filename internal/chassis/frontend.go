package chassis

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/chassis-run/chassis/internal/plugins"
	"github.com/chassis-run/chassis/internal/scripting"
)

// Bootstrap is the fully resolved startup context handed to the runtime once
// every stage has completed. The Frontend owns it exclusively; downstream
// collaborators only get read access.
type Bootstrap struct {
	Config    *Config
	Registry  *Registry
	KeyFile   *KeyFile // nil when no --defaults-file was given
	BaseDir   string
	PluginDir string
	Plugins   []*plugins.LoadedPlugin
	Lua       *scripting.Engine
}

// Value returns the merged value of an option in a group, as its string
// representation slot. It is the narrow read surface the runtime uses.
func (b *Bootstrap) Value(group, option string) (string, bool) {
	g := b.Registry.Group(group)
	if g == nil {
		return "", false
	}
	return g.String(option)
}

// Frontend walks the bootstrap stages strictly in order. Every stage failure
// is terminal: the error is reported once by the caller and the process
// exits non-zero. Nothing is retried and no partial context escapes.
//
// The whole pipeline runs before any worker goroutine exists, so it is
// deliberately single threaded.
type Frontend struct {
	ProgramName string
	ProgramPath string
	Version     VersionInfo
	Logger      hclog.Logger
	Manager     *plugins.Manager
	Out         io.Writer

	// Environment access is injected so the search-path seeding stays
	// testable.
	Setenv func(key, value string) error
	Getenv func(key string) string
}

// NewFrontend wires a frontend with real process environment and a real
// plugin manager.
func NewFrontend(programName, programPath string, logger hclog.Logger) *Frontend {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Frontend{
		ProgramName: programName,
		ProgramPath: programPath,
		Logger:      logger,
		Manager:     plugins.NewManager(logger),
		Out:         os.Stdout,
		Setenv:      os.Setenv,
		Getenv:      os.Getenv,
	}
}

// Run executes the bootstrap state machine against argv. A nil Bootstrap
// with a nil error means the process should exit cleanly (--version or
// --help was handled).
func (f *Frontend) Run(argv []string) (*Bootstrap, error) {
	cfg := &Config{LogLevel: "info"}
	reg := NewRegistry()
	if err := reg.AddGroup(BaseSection, "chassis options", cfg.BaseOptions()); err != nil {
		return nil, err
	}

	// Base options pass: tolerant, since plugin groups do not exist yet and
	// their flags must not be rejected before the plugins are known.
	if _, err := reg.Parse(argv, false); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		fmt.Fprintln(f.Out, f.Version.Render())
		return nil, nil
	}

	f.Logger.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	// Config file: only when requested, and only if its permissions pass.
	var keyfile *KeyFile
	if cfg.DefaultsFile != "" {
		kf, err := OpenKeyFile(cfg.DefaultsFile, DefaultListSeparator)
		if err != nil {
			return nil, err
		}
		keyfile = kf
		if err := kf.Apply(reg, reg.Group(BaseSection), BaseSection); err != nil {
			return nil, err
		}
	}

	// Base directory: an explicit value (argv or keyfile) must be absolute,
	// otherwise it is derived from the program's own location.
	baseDir, err := ResolveBaseDir(cfg.BaseDir, f.ProgramPath)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir
	reg.Group(BaseSection).ResolvePaths(baseDir)

	if cfg.PluginDir == "" {
		cfg.PluginDir = DefaultPluginDir(baseDir)
	}

	// Plugins load in request order, fail fast, no partial set.
	loaded, err := f.Manager.Load(cfg.PluginDir, cfg.Plugins)
	if err != nil {
		return nil, err
	}

	// Register each plugin's option group. The per-group parse stays
	// tolerant: argv may hold options of groups registered later.
	for _, lp := range loaded {
		specs, err := lp.Plugin.Options()
		if err != nil {
			return nil, &plugins.PluginLoadError{Name: lp.Name, Err: fmt.Errorf("option schema: %w", err)}
		}
		if len(specs) == 0 {
			continue
		}

		opts, err := OptionsFromSpecs(lp.Name, specs)
		if err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("%s-module options", lp.Name)
		if err := reg.AddGroup(lp.Name, desc, opts); err != nil {
			return nil, err
		}
		if _, err := reg.Parse(argv, false); err != nil {
			return nil, err
		}
		if keyfile != nil {
			if err := keyfile.Apply(reg, reg.Group(lp.Name), PluginSection(lp.Name)); err != nil {
				return nil, err
			}
		}
		reg.Group(lp.Name).ResolvePaths(baseDir)
	}

	// Final pass: every group is registered, unknown options are now fatal.
	rest, err := reg.Parse(argv, true)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &ParseError{Option: rest[0], Reason: "unknown argument"}
	}

	// The strict pass re-applied raw argv values, so filename slots may hold
	// relative paths again. Normalize once more now that every group exists.
	for _, g := range reg.Groups() {
		g.ResolvePaths(baseDir)
	}

	if cfg.ShowHelp {
		fmt.Fprintln(f.Out, reg.Usage())
		return nil, nil
	}

	f.seedLuaPaths(cfg, baseDir)

	if cfg.PidFile != "" {
		if err := WritePidFile(cfg.PidFile); err != nil {
			return nil, err
		}
	}

	f.Logger.Info("bootstrap complete",
		"basedir", baseDir,
		"plugin-dir", cfg.PluginDir,
		"plugins", len(loaded))

	return &Bootstrap{
		Config:    cfg,
		Registry:  reg,
		KeyFile:   keyfile,
		BaseDir:   baseDir,
		PluginDir: cfg.PluginDir,
		Plugins:   loaded,
		Lua:       scripting.New(),
	}, nil
}

// setenvChecked writes an environment variable and verifies the write by
// reading it back, logging a diagnostic when the verification fails.
func (f *Frontend) setenvChecked(key, value string) {
	if err := f.Setenv(key, value); err != nil {
		f.Logger.Error("setting environment failed", "key", key, "error", err)
		return
	}
	if got := f.Getenv(key); got != value {
		f.Logger.Error("environment verification failed", "key", key, "want", value, "got", got)
	}
}

// seedLuaPaths sets the interpreter search paths: a flag value wins, an
// already-set environment variable is respected, otherwise a default derived
// from the base directory and program name is used.
func (f *Frontend) seedLuaPaths(cfg *Config, baseDir string) {
	switch {
	case cfg.LuaPath != "":
		f.setenvChecked(scripting.EnvLuaPath, cfg.LuaPath)
	case f.Getenv(scripting.EnvLuaPath) == "":
		f.setenvChecked(scripting.EnvLuaPath, DefaultLuaPath(baseDir, f.ProgramName))
	}

	switch {
	case cfg.LuaCPath != "":
		f.setenvChecked(scripting.EnvLuaCPath, cfg.LuaCPath)
	case f.Getenv(scripting.EnvLuaCPath) == "":
		f.setenvChecked(scripting.EnvLuaCPath, DefaultLuaCPath(baseDir, f.ProgramName))
	}
}
