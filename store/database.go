package store

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// tableState is the in-memory (and persisted) shape of one table.
type tableState struct {
	Columns            []string `json:"columns"`
	Records            []Record `json:"records"`
	AutoIncrement      int64    `json:"auto_increment"`
	CreatedAt          int64    `json:"created_at"`
	CreatedAtFormatted string   `json:"created_at_formatted"`
	ModifiedAt         int64    `json:"modified_at"`
	RecordCount        int      `json:"record_count"`
	UniqueFields       []string `json:"unique_fields,omitempty"`
}

type statsState struct {
	TotalQueries    uint64  `json:"total_queries"`
	TotalInserts    uint64  `json:"total_inserts"`
	TotalUpdates    uint64  `json:"total_updates"`
	TotalDeletes    uint64  `json:"total_deletes"`
	TotalTimeSpent  float64 `json:"total_time_spent"`
	CreatedAt       int64   `json:"created_at"`
	LastOperationAt int64   `json:"last_operation_at,omitempty"`
}

type databaseFile struct {
	DBName           string                 `json:"db_name"`
	SavedAt          int64                  `json:"saved_at"`
	SavedAtFormatted string                 `json:"saved_at_formatted"`
	Tables           map[string]*tableState `json:"tables"`
	Stats            statsState             `json:"stats"`
}

// Database is a JSON-file-backed table store. All methods are safe for
// concurrent use: one mutex serializes every operation, held across the
// mutate+persist pair so a snapshot written to disk always reflects a
// consistent in-memory state.
type Database struct {
	mu        sync.Mutex
	name      string
	dir       string
	path      string
	backupDir string
	tables    map[string]*tableState
	stats     statsState
	now       func() time.Time
}

// TableOption adjusts CreateTable behavior.
type TableOption func(*tableState)

// WithUniqueField declares a unique constraint on the named field. Inserts
// and updates that would duplicate an existing value are rejected with
// ErrDuplicateKey, atomically with the write itself.
func WithUniqueField(field string) TableOption {
	return func(t *tableState) {
		t.UniqueFields = append(t.UniqueFields, field)
	}
}

// Open loads (or creates) the database named name under dir. The data and
// backup directories are created if absent. A missing or malformed data file
// is not fatal: the store logs the condition and starts empty.
func Open(name, dir string) (*Database, error) {
	db := &Database{
		name:      name,
		dir:       dir,
		path:      filepath.Join(dir, name+".json"),
		backupDir: filepath.Join(dir, "backups"),
		tables:    map[string]*tableState{},
		now:       time.Now,
	}
	db.stats.CreatedAt = db.now().Unix()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := os.MkdirAll(db.backupDir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: db.backupDir, Err: err}
	}

	db.load()
	return db, nil
}

// load reads the persisted document. Corruption degrades to an empty store.
func (d *Database) load() {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("goVault: store %q unreadable, starting empty: %v", d.name, err)
		}
		return
	}

	var file databaseFile
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&file); err != nil {
		log.Printf("goVault: store %q corrupt, starting empty: %v", d.name, err)
		return
	}

	if file.Tables != nil {
		for _, t := range file.Tables {
			for i, r := range t.Records {
				t.Records[i] = normalizeRecord(r)
			}
		}
		d.tables = file.Tables
	}
	if file.Stats.CreatedAt != 0 {
		d.stats = file.Stats
	}
}

// persist rewrites the full on-disk document. Must be called with d.mu held.
func (d *Database) persist() error {
	now := d.now()
	file := databaseFile{
		DBName:           d.name,
		SavedAt:          now.Unix(),
		SavedAtFormatted: now.Format(timestampLayout),
		Tables:           d.tables,
		Stats:            d.stats,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: d.path, Err: err}
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: d.path, Err: err}
	}
	return nil
}

// timeOp feeds the operation timing stats. Must be called with d.mu held.
func (d *Database) timeOp(start time.Time) {
	d.stats.TotalTimeSpent += d.now().Sub(start).Seconds()
	d.stats.LastOperationAt = d.now().Unix()
}

/*
====================================
TABLE MANAGEMENT
====================================
*/

// CreateTable creates an empty table with auto_increment starting at 1 and
// persists immediately. Returns ErrTableExists when the name is taken.
func (d *Database) CreateTable(name string, columns []string, opts ...TableOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.timeOp(d.now())

	if _, ok := d.tables[name]; ok {
		return ErrTableExists
	}

	now := d.now()
	t := &tableState{
		Columns:            append([]string(nil), columns...),
		Records:            []Record{},
		AutoIncrement:      1,
		CreatedAt:          now.Unix(),
		CreatedAtFormatted: now.Format(timestampLayout),
		ModifiedAt:         now.Unix(),
	}
	for _, opt := range opts {
		opt(t)
	}

	d.tables[name] = t
	if err := d.persist(); err != nil {
		delete(d.tables, name)
		return err
	}
	return nil
}

// DropTable removes a table and persists. Returns ErrTableNotFound when absent.
func (d *Database) DropTable(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tables[name]
	if !ok {
		return ErrTableNotFound
	}

	delete(d.tables, name)
	if err := d.persist(); err != nil {
		d.tables[name] = t
		return err
	}
	return nil
}

// Path returns the location of the JSON data file.
func (d *Database) Path() string {
	return d.path
}

// ListTables returns the names of all tables in unspecified order.
func (d *Database) ListTables() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	return names
}

// TableInfo describes one table for administrative views.
type TableInfo struct {
	Name        string
	Columns     []string
	RecordCount int
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Info returns metadata about a table, or ErrTableNotFound.
func (d *Database) Info(name string) (TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tables[name]
	if !ok {
		return TableInfo{}, ErrTableNotFound
	}
	return TableInfo{
		Name:        name,
		Columns:     append([]string(nil), t.Columns...),
		RecordCount: t.RecordCount,
		CreatedAt:   time.Unix(t.CreatedAt, 0),
		ModifiedAt:  time.Unix(t.ModifiedAt, 0),
	}, nil
}

/*
====================================
CRUD
====================================
*/

// Insert appends a record, assigning the next auto-increment id and stamping
// creation/modification metadata, then persists. The returned id is never
// reused, even after the record is deleted. The input record is copied; the
// caller keeps ownership of its map.
func (d *Database) Insert(table string, record Record) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.timeOp(d.now())

	t, ok := d.tables[table]
	if !ok {
		return 0, ErrTableNotFound
	}

	stored := normalizeRecord(record.Clone())
	for _, field := range t.UniqueFields {
		want, present := stored[field]
		if !present {
			continue
		}
		for _, existing := range t.Records {
			if valueEqual(existing[field], want) {
				return 0, ErrDuplicateKey
			}
		}
	}

	now := d.now()
	stored[FieldID] = t.AutoIncrement
	stored[FieldCreatedAt] = now.Unix()
	stored[FieldCreatedAtDisplay] = now.Format(timestampLayout)
	stored[FieldModifiedAt] = now.Unix()
	stored[FieldModifiedAtDisplay] = now.Format(timestampLayout)

	t.Records = append(t.Records, stored)
	t.AutoIncrement++
	t.RecordCount = len(t.Records)
	t.ModifiedAt = now.Unix()
	d.stats.TotalInserts++

	if err := d.persist(); err != nil {
		t.Records = t.Records[:len(t.Records)-1]
		t.AutoIncrement--
		t.RecordCount = len(t.Records)
		return 0, err
	}
	return stored.ID(), nil
}

// Select returns deep copies of all records matching conds, in insertion
// order unless OrderBy is given. An absent table yields an empty result, not
// an error.
func (d *Database) Select(table string, conds Conditions, opts ...QueryOption) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.timeOp(d.now())

	t, ok := d.tables[table]
	if !ok {
		return []Record{}
	}
	d.stats.TotalQueries++

	results := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if matches(r, conds) {
			results = append(results, r.Clone())
		}
	}

	var options queryOptions
	for _, opt := range opts {
		opt(&options)
	}
	sortRecords(results, options.orderBy)
	if options.limit > 0 && len(results) > options.limit {
		results = results[:options.limit]
	}
	return results
}

// SelectOne returns the first record matching conds under insertion order,
// or ErrRecordNotFound.
func (d *Database) SelectOne(table string, conds Conditions) (Record, error) {
	results := d.Select(table, conds, Limit(1))
	if len(results) == 0 {
		return nil, ErrRecordNotFound
	}
	return results[0], nil
}

// Update merges values into every record matching conds: new fields are
// added, existing fields overwritten. The id and creation metadata are never
// touched by this path; modification metadata is restamped. Persists once
// when at least one record changed.
func (d *Database) Update(table string, conds Conditions, values Record) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.timeOp(d.now())

	t, ok := d.tables[table]
	if !ok {
		return 0, nil
	}

	var matched []Record
	for _, r := range t.Records {
		if matches(r, conds) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	if err := checkUniqueOnUpdate(t, matched, values); err != nil {
		return 0, err
	}

	// Snapshot for rollback when the write fails.
	previous := make([]Record, len(matched))
	for i, r := range matched {
		previous[i] = r.Clone()
	}

	now := d.now()
	for _, r := range matched {
		for k, v := range values {
			switch k {
			case FieldID, FieldCreatedAt, FieldCreatedAtDisplay:
				continue
			}
			r[k] = normalizeValue(cloneValue(v))
		}
		r[FieldModifiedAt] = now.Unix()
		r[FieldModifiedAtDisplay] = now.Format(timestampLayout)
	}

	t.ModifiedAt = now.Unix()
	d.stats.TotalUpdates += uint64(len(matched))

	if err := d.persist(); err != nil {
		for i, r := range matched {
			for k := range r {
				delete(r, k)
			}
			for k, v := range previous[i] {
				r[k] = v
			}
		}
		return 0, err
	}
	return len(matched), nil
}

func checkUniqueOnUpdate(t *tableState, matched []Record, values Record) error {
	for _, field := range t.UniqueFields {
		want, present := values[field]
		if !present {
			continue
		}
		// The same value landing on more than one record is already a conflict.
		if len(matched) > 1 {
			return ErrDuplicateKey
		}
		for _, existing := range t.Records {
			if existing.ID() == matched[0].ID() {
				continue
			}
			if valueEqual(existing[field], want) {
				return ErrDuplicateKey
			}
		}
	}
	return nil
}

// Delete removes every record matching conds, recomputes the record count,
// and persists once when at least one record was removed. The table's
// auto-increment counter is never reduced.
func (d *Database) Delete(table string, conds Conditions) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.timeOp(d.now())

	t, ok := d.tables[table]
	if !ok {
		return 0, nil
	}

	kept := t.Records[:0:0]
	for _, r := range t.Records {
		if !matches(r, conds) {
			kept = append(kept, r)
		}
	}

	deleted := len(t.Records) - len(kept)
	if deleted == 0 {
		return 0, nil
	}

	previous := t.Records
	t.Records = kept
	t.RecordCount = len(kept)
	t.ModifiedAt = d.now().Unix()
	d.stats.TotalDeletes += uint64(deleted)

	if err := d.persist(); err != nil {
		t.Records = previous
		t.RecordCount = len(previous)
		return 0, err
	}
	return deleted, nil
}
