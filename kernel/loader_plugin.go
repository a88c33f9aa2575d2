//go:build (linux || darwin || freebsd) && cgo

package kernel

import (
	"fmt"
	"plugin"
)

// Load implements Loader.
func (l PluginLoader) Load(artifact string) (Handle, error) {
	p, err := plugin.Open(artifact)
	if err != nil {
		return Handle{}, &LoadError{Artifact: artifact, Err: err}
	}
	name := symbol(l.Symbol, "Apply")
	sym, err := p.Lookup(name)
	if err != nil {
		return Handle{}, &LoadError{Artifact: artifact, Err: err}
	}
	switch fn := sym.(type) {
	case func(uint64, [][2]float32) [][2]float32:
		return Handle{Func: fn}, nil
	case *func(uint64, [][2]float32) [][2]float32:
		return Handle{Func: *fn}, nil
	}
	return Handle{}, &LoadError{
		Artifact: artifact,
		Err:      fmt.Errorf("symbol %s has unexpected type %T", name, sym),
	}
}
