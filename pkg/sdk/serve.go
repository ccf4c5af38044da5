package sdk

import (
	"github.com/hashicorp/go-plugin"
)

// Serve hands the process over to go-plugin. Plugin binaries call it from
// main after constructing their implementation; it blocks until the host
// kills the plugin.
func Serve(impl Plugin) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			DispenseName: &RPCPlugin{Impl: impl},
		},
	})
}
