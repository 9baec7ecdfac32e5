package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chanport/channels-bot/internal/domain"
)

const (
	usersFile       = "users.txt"
	userTimeLayout  = "2006-01-02 15:04:05"
	userFieldsCount = 4
)

// fileUserLedger keeps users as pipe-separated lines, one per user:
//
//	<id>|<first name>|<username or N/A>|<first seen>
//
// The file is append-only; uniqueness is enforced by scanning existing
// lines before appending, never by rewriting the file.
type fileUserLedger struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

// NewFileUserLedger creates a file-backed user ledger rooted at dir.
func NewFileUserLedger(dir string, log *slog.Logger) UserLedger {
	if log == nil {
		log = slog.Default()
	}

	return &fileUserLedger{
		path: filepath.Join(dir, usersFile),
		log:  log,
	}
}

func (l *fileUserLedger) Append(ctx context.Context, user domain.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.readLines()
	prefix := strconv.FormatInt(user.TelegramID, 10) + "|"
	for _, line := range existing {
		if strings.HasPrefix(line, prefix) {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open user ledger: %w", err)
	}
	defer f.Close()

	handle := user.Username
	if handle == "" {
		handle = "N/A"
	}

	entry := fmt.Sprintf("%d|%s|%s|%s\n",
		user.TelegramID,
		sanitizeField(user.FirstName),
		sanitizeField(handle),
		user.FirstSeen.Format(userTimeLayout),
	)

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("append user: %w", err)
	}

	l.log.Info("new user registered",
		slog.Int64("user_id", user.TelegramID),
		slog.String("first_name", user.FirstName),
	)

	return nil
}

func (l *fileUserLedger) List(ctx context.Context) ([]domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := l.readLines()
	users := make([]domain.User, 0, len(lines))

	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != userFieldsCount {
			continue
		}

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}

		username := parts[2]
		if username == "N/A" {
			username = ""
		}

		firstSeen, _ := time.ParseInLocation(userTimeLayout, parts[3], time.Local)

		users = append(users, domain.User{
			TelegramID: id,
			FirstName:  parts[1],
			Username:   username,
			FirstSeen:  firstSeen,
		})
	}

	return users, nil
}

func (l *fileUserLedger) readLines() []string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn("failed to read user ledger, treating as empty",
				slog.String("path", l.path), slog.Any("error", err))
		}
		return nil
	}

	raw := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// sanitizeField strips the field separator and newlines so a crafted
// display name cannot corrupt the ledger format.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
