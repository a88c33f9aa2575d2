//go:build !((linux || darwin || freebsd) && cgo)

package kernel

import "errors"

// Load implements Loader.
func (l PluginLoader) Load(artifact string) (Handle, error) {
	return Handle{}, &LoadError{
		Artifact: artifact,
		Err:      errors.New("go plugins are not supported by this build"),
	}
}
