package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/taigrr/tinyraster/pkg/scene"
)

// settle is how long the inputs must stay quiet before a re-render.
const settle = 200 * time.Millisecond

// watchScene renders s, then renders again whenever the model, its
// texture or the scene file changes, until ctx is done. Directories are
// watched rather than files so editors that replace files on save are
// still seen. reload rebuilds the scene after the scene file changes.
func watchScene(ctx context.Context, s scene.Scene, o *renderOptions, reload func() (scene.Scene, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	watched := watchSet(s, o.scenePath)
	for dir := range dirsOf(watched) {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	if err := renderScene(ctx, s, o); err != nil {
		slog.Error("render failed", "error", err)
	}
	slog.Info("watching for changes", "files", len(watched))

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := watched[filepath.Clean(ev.Name)]; !ok {
				continue
			}
			slog.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		case <-timer.C:
			if o.scenePath != "" {
				reloaded, err := reload()
				if err != nil {
					slog.Error("reload scene", "error", err)
					continue
				}
				s = reloaded
			}
			if err := renderScene(ctx, s, o); err != nil {
				slog.Error("render failed", "error", err)
			}
		}
	}
}

// watchSet returns the cleaned paths whose changes trigger a render.
func watchSet(s scene.Scene, scenePath string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range []string{s.Model, s.TexturePath(), scenePath} {
		if p != "" {
			set[filepath.Clean(p)] = struct{}{}
		}
	}
	return set
}

func dirsOf(paths map[string]struct{}) map[string]struct{} {
	dirs := make(map[string]struct{}, len(paths))
	for p := range paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	return dirs
}
