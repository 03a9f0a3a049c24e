package batch

import (
	"context"

	"github.com/philipparndt/meshclean/pkg/watcher"
)

// Watch processes the existing backlog once, then runs single files as the
// watcher reports them settling in dir. It returns when the context is
// cancelled or the watcher cannot be started.
func Watch(ctx context.Context, r *Runner, dw *watcher.DirWatcher, dir string) error {
	backlog, err := r.Run(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("backlog done",
		"processed", backlog.Processed,
		"failed", backlog.Failed)

	events := make(chan string, 64)
	if err := dw.Watch(dir, r.Matches, func(name string) {
		select {
		case events <- name:
		case <-ctx.Done():
		}
	}); err != nil {
		return err
	}
	dw.Start()
	defer dw.Close()

	r.logger.Info("watching", "dir", dir, "extensions", extensionList(r.extensions))
	for {
		select {
		case <-ctx.Done():
			return nil
		case name := <-events:
			r.RunOne(ctx, name)
		}
	}
}
