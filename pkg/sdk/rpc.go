package sdk

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// RPCClient is the host-side stub talking to a plugin process over net/rpc.
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) Name() string {
	var name string
	if err := c.client.Call("Plugin.Name", new(interface{}), &name); err != nil {
		return ""
	}
	return name
}

func (c *RPCClient) Options() ([]OptionSpec, error) {
	var specs []OptionSpec
	if err := c.client.Call("Plugin.Options", new(interface{}), &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// RPCServer exposes a plugin implementation over net/rpc inside the plugin
// process.
type RPCServer struct {
	Impl Plugin
}

func (s *RPCServer) Name(args interface{}, name *string) error {
	*name = s.Impl.Name()
	return nil
}

func (s *RPCServer) Options(args interface{}, specs *[]OptionSpec) error {
	out, err := s.Impl.Options()
	if err != nil {
		return err
	}
	*specs = out
	return nil
}

// RPCPlugin adapts Plugin to go-plugin's net/rpc transport.
type RPCPlugin struct {
	plugin.Plugin
	Impl Plugin
}

func (p *RPCPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

func (p *RPCPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}
