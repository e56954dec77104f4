package content

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Change is a content file that was written, created, removed or renamed.
type Change struct {
	Pack string
	Path string
	Op   fsnotify.Op
}

// Watch reports changes under every DirPack of the resolver until ctx
// is done. Archive and box packs are immutable and not watched.
// Directories created after Watch starts are picked up as they appear.
func (r *Resolver) Watch(ctx context.Context, log logrus.FieldLogger) (<-chan Change, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	var dirs []*DirPack
	for _, p := range r.Packs() {
		d, ok := p.(*DirPack)
		if !ok {
			continue
		}
		dirs = append(dirs, d)
		err := filepath.Walk(d.Root(), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return nil, err
		}
	}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := watcher.Add(event.Name); err != nil {
							log.WithError(err).WithField("dir", event.Name).Warn("cannot watch new directory")
						}
						continue
					}
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				change, ok := relativeTo(dirs, event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("content watcher error")
			}
		}
	}()
	return changes, nil
}

func relativeTo(dirs []*DirPack, event fsnotify.Event) (Change, bool) {
	for _, d := range dirs {
		rel, err := filepath.Rel(d.Root(), event.Name)
		if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
			continue
		}
		return Change{Pack: d.Name(), Path: Clean(rel), Op: event.Op}, true
	}
	return Change{}, false
}
