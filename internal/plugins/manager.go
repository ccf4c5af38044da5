// Package plugins loads chassis plugin binaries and exposes their identity
// and option schemas to the bootstrap pipeline. Plugins run as separate
// processes driven through hashicorp/go-plugin.
package plugins

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/chassis-run/chassis/pkg/sdk"
)

// Plugin binaries follow a platform naming convention, mirroring the lib/.so
// convention of native module systems.
const filenamePrefix = "chassis-"

func filenameSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// Filename builds the path of a plugin binary from its directory and name.
// It is a pure function so the naming convention stays testable.
func Filename(dir, name string) string {
	return filepath.Join(dir, filenamePrefix+name+filenameSuffix())
}

// PluginLoadError reports the plugin that aborted the load sequence.
type PluginLoadError struct {
	Name string
	Err  error
}

func (e *PluginLoadError) Error() string {
	return fmt.Sprintf("loading plugin %q failed: %v (setting --plugin-dir=<dir> might help)", e.Name, e.Err)
}

func (e *PluginLoadError) Unwrap() error {
	return e.Err
}

// LoadedPlugin pairs a running plugin with the handle owning its process.
type LoadedPlugin struct {
	Name   string
	Plugin sdk.Plugin
	kill   func()
}

// Kill terminates the plugin process.
func (lp *LoadedPlugin) Kill() {
	if lp.kill != nil {
		lp.kill()
	}
}

// Dialer starts one plugin process and returns its bootstrap interface plus
// a kill function. The default dials through go-plugin; tests substitute
// fakes.
type Dialer func(path string, logger hclog.Logger) (sdk.Plugin, func(), error)

// Manager owns the process-lifetime plugin collection. Plugins are loaded
// once during bootstrap, kept in request order, and only released at
// shutdown.
type Manager struct {
	logger  hclog.Logger
	dial    Dialer
	plugins []*LoadedPlugin
}

// NewManager returns a manager dialing real plugin binaries.
func NewManager(logger hclog.Logger) *Manager {
	return NewManagerWithDialer(logger, GoPluginDialer)
}

// NewManagerWithDialer returns a manager with a custom dialer.
func NewManagerWithDialer(logger hclog.Logger, dial Dialer) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{logger: logger, dial: dial}
}

// Load starts every requested plugin in order. Empty names are skipped: a
// bare --plugins= parses to one empty entry and means "no plugins
// requested", not an error. The first failure kills everything loaded so far
// and returns a PluginLoadError; a partial plugin set is never kept.
func (m *Manager) Load(dir string, names []string) ([]*LoadedPlugin, error) {
	var loaded []*LoadedPlugin
	for _, name := range names {
		if name == "" {
			continue
		}

		path := Filename(dir, name)
		p, kill, err := m.dial(path, m.logger.Named(name))
		if err != nil {
			for _, lp := range loaded {
				lp.Kill()
			}
			return nil, &PluginLoadError{Name: name, Err: err}
		}

		m.logger.Debug("plugin loaded", "name", name, "path", path)
		loaded = append(loaded, &LoadedPlugin{Name: name, Plugin: p, kill: kill})
	}

	m.plugins = append(m.plugins, loaded...)
	return loaded, nil
}

// Plugins returns the full collection in load order.
func (m *Manager) Plugins() []*LoadedPlugin {
	return m.plugins
}

// Shutdown kills every plugin process.
func (m *Manager) Shutdown() {
	for _, lp := range m.plugins {
		lp.Kill()
	}
	m.plugins = nil
}

// GoPluginDialer starts the plugin binary and dispenses its bootstrap
// interface over net/rpc.
func GoPluginDialer(path string, logger hclog.Logger) (sdk.Plugin, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("plugin file check failed: %w", err)
	}
	if !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
		return nil, nil, fmt.Errorf("plugin %s is not executable", path)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  sdk.Handshake,
		Plugins:          sdk.PluginMap,
		Cmd:              exec.Command(path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to connect to plugin: %w", err)
	}

	raw, err := rpcClient.Dispense(sdk.DispenseName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	p, ok := raw.(sdk.Plugin)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin does not implement the chassis plugin interface")
	}

	return p, client.Kill, nil
}
