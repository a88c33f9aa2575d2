//go:build linux || darwin || freebsd

package kernel

import (
	"github.com/ebitengine/purego"
)

// Load implements Loader.
func (l NativeLoader) Load(artifact string) (Handle, error) {
	lib, err := purego.Dlopen(artifact, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return Handle{}, &LoadError{Artifact: artifact, Err: err}
	}
	name := symbol(l.Symbol, "apply")
	if _, err := purego.Dlsym(lib, name); err != nil {
		purego.Dlclose(lib)
		return Handle{}, &LoadError{Artifact: artifact, Err: err}
	}

	var apply func(elapsedMs uint64, in, out *float32, n uint64)
	purego.RegisterLibFunc(&apply, lib, name)
	return Handle{
		Func: func(elapsedMs uint64, bins [][2]float32) [][2]float32 {
			out := make([][2]float32, len(bins))
			if len(bins) > 0 {
				apply(elapsedMs, &bins[0][0], &out[0][0], uint64(len(bins)))
			}
			return out
		},
		Release: func() error {
			return purego.Dlclose(lib)
		},
	}, nil
}
