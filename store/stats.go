package store

import "time"

// DatabaseStats is a point-in-time view of store activity.
type DatabaseStats struct {
	Name           string
	TablesCount    int
	TotalRecords   int
	TotalQueries   uint64
	TotalInserts   uint64
	TotalUpdates   uint64
	TotalDeletes   uint64
	TotalTimeSpent time.Duration
	Uptime         time.Duration
	CreatedAt      time.Time
	LastOperation  time.Time
}

// Stats reports cumulative operation counters and the time spent inside
// store operations since the database was first created.
func (d *Database) Stats() DatabaseStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := 0
	for _, t := range d.tables {
		total += len(t.Records)
	}

	created := time.Unix(d.stats.CreatedAt, 0)
	s := DatabaseStats{
		Name:           d.name,
		TablesCount:    len(d.tables),
		TotalRecords:   total,
		TotalQueries:   d.stats.TotalQueries,
		TotalInserts:   d.stats.TotalInserts,
		TotalUpdates:   d.stats.TotalUpdates,
		TotalDeletes:   d.stats.TotalDeletes,
		TotalTimeSpent: time.Duration(d.stats.TotalTimeSpent * float64(time.Second)),
		Uptime:         d.now().Sub(created),
		CreatedAt:      created,
	}
	if d.stats.LastOperationAt != 0 {
		s.LastOperation = time.Unix(d.stats.LastOperationAt, 0)
	}
	return s
}
