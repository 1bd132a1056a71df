package html

import (
	"github.com/fwojciec/mdstream"
)

type hook[T any] struct {
	name string
	hook T
}

// pipeline holds the plugins of one conversion split by capability.
type pipeline struct {
	before []hook[mdstream.BeforeNodeProcessor]
	attrs  []hook[mdstream.AttributeProcessor]
	enter  []hook[mdstream.NodeEnterHook]
	exit   []hook[mdstream.NodeExitHook]
	text   []hook[mdstream.TextProcessor]
}

func newPipeline(plugins []mdstream.Plugin) *pipeline {
	p := &pipeline{}
	for _, pl := range plugins {
		name := pl.Name()
		if h, ok := pl.(mdstream.BeforeNodeProcessor); ok {
			p.before = append(p.before, hook[mdstream.BeforeNodeProcessor]{name, h})
		}
		if h, ok := pl.(mdstream.AttributeProcessor); ok {
			p.attrs = append(p.attrs, hook[mdstream.AttributeProcessor]{name, h})
		}
		if h, ok := pl.(mdstream.NodeEnterHook); ok {
			p.enter = append(p.enter, hook[mdstream.NodeEnterHook]{name, h})
		}
		if h, ok := pl.(mdstream.NodeExitHook); ok {
			p.exit = append(p.exit, hook[mdstream.NodeExitHook]{name, h})
		}
		if h, ok := pl.(mdstream.TextProcessor); ok {
			p.text = append(p.text, hook[mdstream.TextProcessor]{name, h})
		}
	}
	return p
}

// pluginError wraps a hook failure so that it aborts the conversion.
func pluginError(name string, err error) error {
	msg := err.Error()
	if mdstream.ErrorCode(err) != mdstream.EINTERNAL {
		msg = mdstream.ErrorMessage(err)
	}
	e := mdstream.Errorf(mdstream.EPLUGIN, "plugin %s: %s", name, msg)
	e.Err = err
	return e
}

// presets returns fresh instances of the built-in plugins for a strategy.
func presets(strategy mdstream.Strategy) []mdstream.Plugin {
	switch strategy {
	case mdstream.StrategyFull:
		return nil
	case mdstream.StrategyMinimalFromFirstHeader:
		return []mdstream.Plugin{NewFilter(), NewFrontmatter(), NewHeaderGate()}
	}
	return []mdstream.Plugin{NewFilter(), NewFrontmatter()}
}
