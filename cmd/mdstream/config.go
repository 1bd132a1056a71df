package main

import (
	"errors"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mdstream"
	"gopkg.in/yaml.v3"
)

// yamlConfig loads flag defaults from a YAML mapping keyed by flag name,
// with dashes or underscores. Flags given on the command line win.
//
//	strategy: minimal-from-first-header
//	exclude: [".cookie-banner", "#comments"]
//	rate-limit: 1
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, mdstream.Errorf(mdstream.EINVALID, "invalid config file: %v", err)
	}
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := values[flag.Name]; ok {
			return v, nil
		}
		if v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
			return v, nil
		}
		return nil, nil
	}), nil
}
