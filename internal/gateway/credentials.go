package gateway

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/chanport/channels-bot/internal/domain"
)

// CredentialsProvider loads processor credentials from a JSON file and
// hot reloads them when the file changes, so operators can enable
// payments without restarting the bot. Missing or unreadable files
// degrade to empty credentials, which keeps the payment feature
// disabled rather than failing startup.
type CredentialsProvider struct {
	mu      sync.RWMutex
	path    string
	current domain.Credentials
	watcher *fsnotify.Watcher
	log     *slog.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewCredentialsProvider reads the credentials file at path and begins
// watching its directory for changes.
func NewCredentialsProvider(path string, log *slog.Logger) (*CredentialsProvider, error) {
	if log == nil {
		log = slog.Default()
	}

	p := &CredentialsProvider{
		path: path,
		log:  log,
		done: make(chan struct{}),
	}

	p.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors and provisioning tools
	// replace the file via rename, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	p.watcher = watcher

	p.wg.Add(1)
	go p.watch()

	return p, nil
}

// Credentials returns the most recently loaded credentials.
func (p *CredentialsProvider) Credentials() domain.Credentials {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

// Configured reports whether the payment feature is currently enabled.
func (p *CredentialsProvider) Configured() bool {
	return p.Credentials().Configured()
}

// Close stops the file watcher.
func (p *CredentialsProvider) Close() error {
	close(p.done)
	err := p.watcher.Close()
	p.wg.Wait()
	return err
}

func (p *CredentialsProvider) watch() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			p.reload()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.log.Warn("credentials watcher error", slog.Any("error", err))
		}
	}
}

func (p *CredentialsProvider) reload() {
	var creds domain.Credentials

	data, err := os.ReadFile(p.path)
	switch {
	case os.IsNotExist(err):
		// stays unconfigured until the operator creates the file
	case err != nil:
		p.log.Warn("failed to read credentials file",
			slog.String("path", p.path), slog.Any("error", err))
	default:
		if err := json.Unmarshal(data, &creds); err != nil {
			p.log.Warn("failed to decode credentials file",
				slog.String("path", p.path), slog.Any("error", err))
			creds = domain.Credentials{}
		}
	}

	p.mu.Lock()
	changed := creds != p.current
	p.current = creds
	p.mu.Unlock()

	if changed {
		p.log.Info("payment credentials reloaded",
			slog.Bool("configured", creds.Configured()))
	}
}
