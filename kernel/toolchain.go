package kernel

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// artifactName is the name of compiled module inside the build directory.
	artifactName = "kernel.so"
	// pluginPath prefixes module paths of Go kernel builds.
	pluginPath = "vocoder/kernel/"
)

// Toolchain builds kernel source into a loadable module.
type Toolchain interface {
	// Build compiles the source inside dir and returns the path of the
	// module. Compilation failures are returned as *BuildError.
	Build(ctx context.Context, source, dir string) (string, error)
}

// GoToolchain builds Go kernels as plugins. Plugins must be built with
// the same Go version and flags as the host binary, Flags can be used to
// pass them, e.g. -trimpath.
type GoToolchain struct {
	Command string
	Flags   []string
}

// Build implements Toolchain. Every build is a separate module named
// after the build directory, so the plugin gets a unique package path
// and each build can be loaded into the same process.
func (t GoToolchain) Build(ctx context.Context, source, dir string) (string, error) {
	if err := snapshot(source, filepath.Join(dir, "kernel.go")); err != nil {
		return "", &BuildError{Source: source, Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), goMod(filepath.Base(dir)), 0o644); err != nil {
		return "", &BuildError{Source: source, Err: err}
	}
	args := []string{"build", "-buildmode=plugin", "-o", artifactName}
	args = append(args, t.Flags...)
	args = append(args, ".")
	// kernel module must not be resolved against a workspace of the caller
	env := append(os.Environ(), "GOWORK=off")
	if err := run(ctx, source, dir, command(t.Command, "go"), args, env); err != nil {
		return "", err
	}
	return filepath.Join(dir, artifactName), nil
}

// goMod returns the module file of a kernel build.
func goMod(name string) []byte {
	mod := "module " + pluginPath + name + "\n"
	if v := goVersion(runtime.Version()); v != "" {
		mod += "\ngo " + v + "\n"
	}
	return []byte(mod)
}

// goVersion returns language version of the release, e.g. 1.24 for
// go1.24.3. Development builds have no language version.
func goVersion(release string) string {
	v, ok := strings.CutPrefix(release, "go")
	if !ok {
		return ""
	}
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return ""
	}
	minor := parts[1]
	// pre-releases: go1.25rc1
	if i := strings.IndexFunc(minor, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		minor = minor[:i]
	}
	if minor == "" {
		return ""
	}
	return parts[0] + "." + minor
}

// CToolchain builds C kernels as shared libraries.
type CToolchain struct {
	Command string
	Flags   []string
}

// Build implements Toolchain.
func (t CToolchain) Build(ctx context.Context, source, dir string) (string, error) {
	const file = "kernel.c"
	if err := snapshot(source, filepath.Join(dir, file)); err != nil {
		return "", &BuildError{Source: source, Err: err}
	}
	args := []string{"-shared", "-fPIC", "-O2", "-o", artifactName}
	args = append(args, t.Flags...)
	args = append(args, file, "-lm")
	if err := run(ctx, source, dir, command(t.Command, "cc"), args, nil); err != nil {
		return "", err
	}
	return filepath.Join(dir, artifactName), nil
}

// ForSource returns toolchain and loader that handle the source file
// extension.
func ForSource(source string) (Toolchain, Loader, error) {
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".go":
		return GoToolchain{}, PluginLoader{}, nil
	case ".c":
		return CToolchain{}, NativeLoader{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q extension", ErrUnsupportedSource, ext)
	}
}

func command(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// run executes the compiler in dir. Diagnostics are attached to the
// build error.
func run(ctx context.Context, source, dir, name string, args, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &BuildError{
			Source: source,
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return nil
}

// snapshot copies the source into the build directory, so the build
// isn't affected by edits made while it's running.
func snapshot(source, dst string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
