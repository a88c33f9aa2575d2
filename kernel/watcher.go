package kernel

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// defaultDebounce is the quiet period after the last file event before
// the change is reported. Editors often write a file in several steps.
const defaultDebounce = 100 * time.Millisecond

// Watcher reports changes of the file. The returned channel is closed
// when ctx is done.
type Watcher interface {
	Watch(ctx context.Context, path string) (<-chan struct{}, error)
}

// FSWatcher watches the directory of the file with fsnotify, so
// replacing the file by rename is also noticed. A change is reported
// only when the file content differs from the last reported one.
type FSWatcher struct {
	Debounce time.Duration
	Log      logrus.FieldLogger
}

// Watch implements Watcher.
func (w FSWatcher) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	log := w.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	last, _ := digest(path)
	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer fw.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				timer.Reset(debounce)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("kernel watcher error")
			case <-timer.C:
				sum, err := digest(path)
				if err != nil {
					// file may be replaced at the moment
					log.WithError(err).WithField("source", path).Debug("kernel source unreadable")
					continue
				}
				if sum == last {
					continue
				}
				last = sum
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()
	return changes, nil
}

func digest(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
