package codebase

import (
	"os"
	"time"
)

// FileWatcher polls the project's source files and keeps the codebase in
// sync with them.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
}

func NewFileWatcher(c *Codebase, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan reparses new and modified files and drops deleted ones. It
// returns the number of files that changed.
func (w *FileWatcher) Scan() int {
	files, err := w.codebase.project.Files()
	if err != nil {
		log.Warningf("watch %s: %s", w.codebase.RootDir(), err)
		return 0
	}

	changed := 0
	current := make(map[string]bool, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = true

		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			continue
		}
		w.modTimes[path] = info.ModTime()
		if err := w.codebase.ScanFile(path); err != nil {
			log.Warningf("%s: %s", path, err)
			continue
		}
		changed++
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed++
		}
	}
	return changed
}
