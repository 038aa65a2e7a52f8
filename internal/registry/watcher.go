package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/schemastore"
)

// EventCallback is called after a watcher-driven registry change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, category string)

// Watch starts an fsnotify watcher on the schema directory and processes
// document change events until ctx is cancelled. It calls cb (if non-nil)
// after each successful registry mutation.
//
// Rename events trigger a debounced reconciliation pass that removes
// stale registry entries whose documents no longer exist on disk.
func Watch(ctx context.Context, db PropertyRegistry, store schemastore.Provider, schemaRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(schemaRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", schemaRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
				continue
			}
			category := strings.TrimSuffix(name, filepath.Ext(name))

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("category", category), slog.String("error", readErr.Error()))
					continue
				}
				doc, parseErr := schemastore.Parse(category, data)
				if parseErr != nil {
					logger.Warn("watcher: parse failed", slog.String("category", category), slog.String("error", parseErr.Error()))
					continue
				}
				if regErr := registerSchema(db, doc, checksum.Sum(data)); regErr != nil {
					logger.Warn("watcher: register failed", slog.String("category", category), slog.String("error", regErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: registered", slog.String("category", doc.Category), slog.String("op", kind))
				if cb != nil {
					cb(kind, doc.Category)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteCategory(category); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("category", category), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("category", category))
				if cb != nil {
					cb("deleted", category)
				}

			case ev.Op&fsnotify.Rename != 0:
				// The new name arrives as a separate Create event; the
				// old registry entry is cleaned up by reconciliation.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename removes registry entries whose documents are gone
// from disk.
func reconcileAfterRename(db PropertyRegistry, store schemastore.Provider, logger *slog.Logger, cb EventCallback) {
	infos, err := store.List()
	if err != nil {
		logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.Category] = struct{}{}
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("watcher: reconcile checksums failed", slog.String("error", err.Error()))
		return
	}
	for name := range checksums {
		if _, ok := disk[name]; ok {
			continue
		}
		if err := db.DeleteCategory(name); err != nil {
			logger.Warn("watcher: reconcile delete failed", slog.String("category", name), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("watcher: reconciled stale", slog.String("category", name))
		if cb != nil {
			cb("deleted", name)
		}
	}
}
