package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	usersFileName = "registered_users.txt"
	logFileName   = "registrations.log"

	timestampLayout = "2006-01-02 15:04:05"
)

// FileExporter is the file-based [Exporter]: one pretty-printed block per
// registration in the users file, one pipe-separated line per registration
// in the log file. The log is the machine-readable source for ReadAll,
// Count, and Stats.
type FileExporter struct {
	mu        sync.Mutex
	usersPath string
	logPath   string
	now       func() time.Time
}

// NewFileExporter creates a [FileExporter] writing under dir, creating the
// directory if absent.
func NewFileExporter(dir string) (*FileExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	return &FileExporter{
		usersPath: filepath.Join(dir, usersFileName),
		logPath:   filepath.Join(dir, logFileName),
		now:       time.Now,
	}, nil
}

// UsersPath returns the path of the pretty-printed users file.
func (e *FileExporter) UsersPath() string { return e.usersPath }

// LogPath returns the path of the pipe-separated registration log.
func (e *FileExporter) LogPath() string { return e.logPath }

// NotifyRegistration appends the registration to both files. The first call
// writes a header into each file.
func (e *FileExporter) NotifyRegistration(reg Registration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.appendUserBlock(reg); err != nil {
		return err
	}
	return e.appendLogLine(reg)
}

func (e *FileExporter) appendUserBlock(reg Registration) error {
	_, statErr := os.Stat(e.usersPath)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(e.usersPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if fresh {
		fmt.Fprintln(w, strings.Repeat("=", 64))
		fmt.Fprintln(w, "  REGISTERED USERS")
		fmt.Fprintf(w, "  Created: %s\n", e.now().Format(timestampLayout))
		fmt.Fprintln(w, strings.Repeat("=", 64))
		fmt.Fprintln(w)
	}

	email := reg.Email
	if email == "" {
		email = "not provided"
	}

	fmt.Fprintln(w, strings.Repeat("-", 64))
	fmt.Fprintf(w, "  USER #%d\n", reg.UserID)
	fmt.Fprintln(w, strings.Repeat("-", 64))
	fmt.Fprintf(w, "  ID:          %d\n", reg.UserID)
	fmt.Fprintf(w, "  Username:    %s\n", reg.Username)
	fmt.Fprintf(w, "  Email:       %s\n", email)
	fmt.Fprintf(w, "  Role:        %s\n", reg.Role)
	fmt.Fprintf(w, "  Registered:  %s (%s)\n",
		reg.RegisteredAt.Format(timestampLayout),
		reg.RegisteredAt.Weekday())
	fmt.Fprintf(w, "  Unix:        %d\n", reg.RegisteredAt.Unix())
	fmt.Fprintln(w)

	return w.Flush()
}

func (e *FileExporter) appendLogLine(reg Registration) error {
	_, statErr := os.Stat(e.logPath)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(e.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if fresh {
		fmt.Fprintln(w, "# USER REGISTRATION LOG")
		fmt.Fprintf(w, "# Created: %s\n", e.now().Format(timestampLayout))
		fmt.Fprintln(w, "# Format: ID | Username | Email | Role | Registered | Unix")
		fmt.Fprintln(w, "#"+strings.Repeat("=", 80))
	}

	email := reg.Email
	if email == "" {
		email = "-"
	}

	fmt.Fprintf(w, "%d | %s | %s | %s | %s | %d\n",
		reg.UserID,
		reg.Username,
		email,
		reg.Role,
		reg.RegisteredAt.Format(timestampLayout),
		reg.RegisteredAt.Unix())

	return w.Flush()
}

// ReadAll parses the registration log and returns every entry in file
// order. A missing log yields an empty slice.
func (e *FileExporter) ReadAll() ([]Registration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readLog()
}

func (e *FileExporter) readLog() ([]Registration, error) {
	f, err := os.Open(e.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Registration{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var regs []Registration
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, " | ")
		if len(parts) < 6 {
			continue
		}

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		unix, err := strconv.ParseInt(parts[5], 10, 64)
		if err != nil {
			continue
		}

		email := parts[2]
		if email == "-" {
			email = ""
		}

		regs = append(regs, Registration{
			UserID:       id,
			Username:     parts[1],
			Email:        email,
			Role:         parts[3],
			RegisteredAt: time.Unix(unix, 0),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []Registration{}
	}
	return regs, nil
}

// Count returns the number of logged registrations.
func (e *FileExporter) Count() (int, error) {
	regs, err := e.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(regs), nil
}

// Stats summarizes the registration log.
type Stats struct {
	TotalUsers   int
	Admins       int
	RegularUsers int

	FirstRegistration time.Time
	LastRegistration  time.Time
	TimeSinceFirst    time.Duration
	TimeSinceLast     time.Duration

	Last24Hours int
	LastHour    int
}

// Stats computes aggregate registration statistics from the log.
func (e *FileExporter) Stats() (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	regs, err := e.readLog()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{TotalUsers: len(regs)}
	if len(regs) == 0 {
		return s, nil
	}

	now := e.now()
	first := regs[0].RegisteredAt
	last := regs[0].RegisteredAt
	for _, reg := range regs {
		if reg.Role == "admin" {
			s.Admins++
		} else {
			s.RegularUsers++
		}
		if reg.RegisteredAt.Before(first) {
			first = reg.RegisteredAt
		}
		if reg.RegisteredAt.After(last) {
			last = reg.RegisteredAt
		}
		age := now.Sub(reg.RegisteredAt)
		if age < 24*time.Hour {
			s.Last24Hours++
		}
		if age < time.Hour {
			s.LastHour++
		}
	}

	s.FirstRegistration = first
	s.LastRegistration = last
	s.TimeSinceFirst = now.Sub(first)
	s.TimeSinceLast = now.Sub(last)
	return s, nil
}
