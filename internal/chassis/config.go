package chassis

// Config is the mutable configuration struct the bootstrap stages write into.
// Every base option descriptor targets a field here; plugin options target
// slots allocated per group. The Frontend owns the struct for the process
// lifetime and hands out read access through the Bootstrap context.
type Config struct {
	ShowVersion  bool
	ShowHelp     bool
	DefaultsFile string
	BaseDir      string
	PluginDir    string
	Plugins      []string
	PidFile      string
	LogLevel     string
	LuaPath      string
	LuaCPath     string
}

// BaseOptions returns the descriptors for the options the chassis itself
// recognizes. They form the base group registered before the tolerant first
// parse.
func (c *Config) BaseOptions() []*Option {
	return []*Option{
		{Name: "version", Short: "V", Kind: KindFlag, BoolVal: &c.ShowVersion,
			Help: "Show version and exit"},
		{Name: "help", Short: "h", Kind: KindFlag, BoolVal: &c.ShowHelp,
			Help: "Show this help and exit"},
		{Name: "defaults-file", Kind: KindString, StrVal: &c.DefaultsFile,
			Help: "configuration file", Placeholder: "<file>"},
		{Name: "basedir", Kind: KindString, StrVal: &c.BaseDir,
			Help: "base directory of the installation, must be absolute", Placeholder: "<dir>"},
		{Name: "plugin-dir", Kind: KindFilename, StrVal: &c.PluginDir,
			Help: "path to the plugins", Placeholder: "<dir>"},
		{Name: "plugins", Kind: KindStringList, ListVal: &c.Plugins,
			Help: "plugins to load", Placeholder: "<name>"},
		{Name: "pid-file", Kind: KindFilename, StrVal: &c.PidFile,
			Help: "file to store the process id in", Placeholder: "<file>"},
		{Name: "log-level", Kind: KindString, StrVal: &c.LogLevel,
			Help: "log verbosity (trace|debug|info|warn|error)", Placeholder: "<level>"},
		{Name: "lua-path", Kind: KindString, StrVal: &c.LuaPath,
			Help: "LUA_PATH for the embedded interpreter", Placeholder: "<path-spec>"},
		{Name: "lua-cpath", Kind: KindString, StrVal: &c.LuaCPath,
			Help: "LUA_CPATH for the embedded interpreter", Placeholder: "<path-spec>"},
	}
}
