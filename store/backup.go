package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	Filename  string
	SizeBytes int64
}

// CreateBackup snapshots the current state to the backups directory as
// <name>_backup_<timestamp>.json and returns the created filename. The
// snapshot uses the same document format as the live data file, so a backup
// can be restored by copying it over the data file.
func (d *Database) CreateBackup() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Persist first so the copied file is never behind memory.
	if err := d.persist(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return "", &StorageError{Op: "read", Path: d.path, Err: err}
	}

	filename := d.name + "_backup_" + d.now().Format("20060102_150405") + ".json"
	dest := filepath.Join(d.backupDir, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", &StorageError{Op: "write", Path: dest, Err: err}
	}
	return filename, nil
}

// ListBackups returns the backups belonging to this database, sorted by
// filename (the embedded timestamp makes that chronological).
func (d *Database) ListBackups() ([]BackupInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(d.backupDir)
	if err != nil {
		return nil, &StorageError{Op: "readdir", Path: d.backupDir, Err: err}
	}

	prefix := d.name + "_backup_"
	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Filename < backups[j].Filename
	})
	return backups, nil
}
