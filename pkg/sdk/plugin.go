// Package sdk defines the contract between the chassis host and its plugin
// binaries: the Plugin interface every plugin implements, the option
// descriptors a plugin may export to the shared parser, and the go-plugin
// wiring both sides need.
package sdk

import (
	"github.com/hashicorp/go-plugin"
)

// Plugin is the capability a chassis plugin exposes to the host during
// bootstrap. Whatever the plugin does once the host is running is negotiated
// separately; bootstrap only needs identity and an option schema.
type Plugin interface {
	// Name returns the plugin's identity. It must match the name the plugin
	// was requested under on the command line.
	Name() string

	// Options returns the plugin's option schema. An empty schema means the
	// plugin has nothing to configure and is not an error.
	Options() ([]OptionSpec, error)
}

// OptionKind tells the host how to interpret an option's argument.
type OptionKind string

const (
	KindFlag       OptionKind = "flag"        // boolean, takes no argument
	KindString     OptionKind = "string"      // single string value
	KindInt        OptionKind = "int"         // single integer value
	KindStringList OptionKind = "string-list" // repeatable, comma separated
	KindFilename   OptionKind = "filename"    // path, normalized against the base dir
)

// OptionSpec describes one option a plugin contributes to the shared parser.
// Specs travel over the plugin RPC link, so they carry plain data only; the
// host allocates the writable slots on its side.
type OptionSpec struct {
	LongName    string
	Short       string
	Kind        OptionKind
	Default     string
	Help        string
	Placeholder string
}

// Handshake guards against the host loading a stray executable as a plugin.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "CHASSIS_PLUGIN",
	MagicCookieValue: "chassis_bootstrap_plugin",
}

// DispenseName is the single entry the host dispenses from a plugin process.
const DispenseName = "chassis"

// PluginMap is the go-plugin map shared by host and plugin binaries.
var PluginMap = map[string]plugin.Plugin{
	DispenseName: &RPCPlugin{},
}
