package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"groundwork/internal/logging"
)

// Watch ingests files dropped into a directory until the context is
// canceled. Only regular files with textual extensions are picked up;
// editors often fire several events per save, and upsert semantics make
// the duplicate ingests harmless.
func (i *Ingestor) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log := logging.Get(logging.CategoryIngest)
	log.Info("watching %s for dropped files", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !ingestable(event.Name) {
				continue
			}
			// Give the writer a moment to finish the file.
			time.Sleep(100 * time.Millisecond)
			if id, err := i.IngestFile(event.Name, map[string]string{"via": "watch"}); err != nil {
				log.Warn("failed to ingest %s: %v", event.Name, err)
			} else {
				log.Info("auto-ingested %s as %s", event.Name, id)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}

func ingestable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".html", ".htm", ".json", ".csv":
		return true
	}
	return false
}
