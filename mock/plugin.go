package mock

import "github.com/fwojciec/mdstream"

var (
	_ mdstream.BeforeNodeProcessor = (*Plugin)(nil)
	_ mdstream.AttributeProcessor  = (*Plugin)(nil)
	_ mdstream.NodeEnterHook       = (*Plugin)(nil)
	_ mdstream.NodeExitHook        = (*Plugin)(nil)
	_ mdstream.TextProcessor       = (*Plugin)(nil)
)

// Plugin is a mock implementation of every mdstream plugin hook.
// Hooks with a nil function do nothing.
type Plugin struct {
	PluginName          string
	BeforeNodeFn        func(ctx mdstream.Context, ev mdstream.Event) (bool, error)
	ProcessAttributesFn func(ctx mdstream.Context, n *mdstream.Node) error
	OnNodeEnterFn       func(ctx mdstream.Context, n *mdstream.Node) (string, error)
	OnNodeExitFn        func(ctx mdstream.Context, n *mdstream.Node) (string, error)
	ProcessTextFn       func(ctx mdstream.Context, n *mdstream.Node) (mdstream.TextResult, error)
}

func (p *Plugin) Name() string {
	if p.PluginName == "" {
		return "mock"
	}
	return p.PluginName
}

func (p *Plugin) BeforeNode(ctx mdstream.Context, ev mdstream.Event) (bool, error) {
	if p.BeforeNodeFn == nil {
		return false, nil
	}
	return p.BeforeNodeFn(ctx, ev)
}

func (p *Plugin) ProcessAttributes(ctx mdstream.Context, n *mdstream.Node) error {
	if p.ProcessAttributesFn == nil {
		return nil
	}
	return p.ProcessAttributesFn(ctx, n)
}

func (p *Plugin) OnNodeEnter(ctx mdstream.Context, n *mdstream.Node) (string, error) {
	if p.OnNodeEnterFn == nil {
		return "", nil
	}
	return p.OnNodeEnterFn(ctx, n)
}

func (p *Plugin) OnNodeExit(ctx mdstream.Context, n *mdstream.Node) (string, error) {
	if p.OnNodeExitFn == nil {
		return "", nil
	}
	return p.OnNodeExitFn(ctx, n)
}

func (p *Plugin) ProcessText(ctx mdstream.Context, n *mdstream.Node) (mdstream.TextResult, error) {
	if p.ProcessTextFn == nil {
		return mdstream.TextResult{}, nil
	}
	return p.ProcessTextFn(ctx, n)
}
