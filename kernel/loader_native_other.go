//go:build !(linux || darwin || freebsd)

package kernel

import "errors"

// Load implements Loader.
func (l NativeLoader) Load(artifact string) (Handle, error) {
	return Handle{}, &LoadError{
		Artifact: artifact,
		Err:      errors.New("shared libraries are not supported on this platform"),
	}
}
