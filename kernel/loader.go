package kernel

// Handle is a loaded kernel module.
type Handle struct {
	Func Func
	// Release unloads the module. Nil if module can't be unloaded.
	Release func() error
}

// Loader loads compiled modules and resolves the kernel entry point.
// Failures are returned as *LoadError.
type Loader interface {
	Load(artifact string) (Handle, error)
}

// LoaderFunc is an adapter to use ordinary functions as loaders.
type LoaderFunc func(artifact string) (Handle, error)

// Load implements Loader.
func (fn LoaderFunc) Load(artifact string) (Handle, error) {
	return fn(artifact)
}

// PluginLoader loads Go plugins. Go plugins can't be unloaded, so
// released modules stay mapped until the process exits.
type PluginLoader struct {
	// Symbol is the name of exported kernel, Apply by default.
	Symbol string
}

// NativeLoader loads shared libraries with C calling convention.
type NativeLoader struct {
	// Symbol is the name of exported kernel, apply by default.
	Symbol string
}

func symbol(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
