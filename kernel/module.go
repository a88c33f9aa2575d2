package kernel

import (
	"errors"
	"os"
	"time"
)

// Module is a built and loaded kernel.
type Module struct {
	Source   string
	Version  int
	BuiltAt  time.Time
	Dir      string
	Artifact string

	apply   Func
	close   func() error
	invoked bool
}

// release unloads the module and removes its build directory.
func (m *Module) release() error {
	var errClose error
	if m.close != nil {
		errClose = m.close()
	}
	return errors.Join(errClose, os.RemoveAll(m.Dir))
}
