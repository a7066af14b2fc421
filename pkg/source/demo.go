package source

import (
	"context"
	"fmt"
	"time"

	"github.com/user/log-console-tui/pkg/models"
)

// DemoScript is a short service session exercising every record kind:
// levels, nested and collapsed groups, and repeats for coalescing.
func DemoScript() []Record {
	rec := func(typ models.EntryType, args ...interface{}) Record {
		return Record{Type: typ, Args: args}
	}

	script := []Record{
		rec(models.TypeInfo, "Application started successfully"),
		rec(models.TypeLog, "Database connection established"),
		rec(models.TypeGroup, "GET /api/v1/users"),
		rec(models.TypeDebug, "Query execution: SELECT * FROM users WHERE active=true (12 rows)"),
		rec(models.TypeLog, "Request completed successfully in 245ms"),
		rec(models.TypeGroupEnd),
		rec(models.TypeWarn, "High memory usage detected (85% utilized)"),
		rec(models.TypeGroupCollapsed, "cache warmup"),
		rec(models.TypeLog, "loading shard %d of %d", 1, 3),
		rec(models.TypeLog, "loading shard %d of %d", 2, 3),
		rec(models.TypeLog, "loading shard %d of %d", 3, 3),
		rec(models.TypeInfo, "Cache warmed up, 1250 entries loaded"),
		rec(models.TypeGroupEnd),
		rec(models.TypeError, "Failed to connect to cache server: timeout"),
		rec(models.TypeTable, []map[string]interface{}{
			{"pool": "primary", "used": 50, "limit": 50},
			{"pool": "replica", "used": 12, "limit": 50},
		}),
		rec(models.TypeError, "Database connection pool exhausted (50/50 connections)"),
	}
	for i := 0; i < 5; i++ {
		script = append(script, rec(models.TypeLog, "health check ok"))
	}
	return script
}

// Demo replays DemoScript and then keeps producing traffic
type Demo struct {
	Interval time.Duration
}

// Run delivers the script immediately and one generated record per
// interval until ctx is done.
func (d Demo) Run(ctx context.Context, sink Sink) error {
	interval := d.Interval
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	for _, r := range DemoScript() {
		sink(r)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sink(DemoRecord(i))
		}
	}
}

// DemoRecord is the i-th generated record; every 50th opens a burst group
func DemoRecord(i int) Record {
	switch {
	case i%50 == 0:
		return Record{Type: models.TypeGroupCollapsed, Args: []interface{}{fmt.Sprintf("batch %d", i/50)}}
	case i%50 == 10:
		return Record{Type: models.TypeGroupEnd}
	}
	typ := []models.EntryType{
		models.TypeLog, models.TypeInfo, models.TypeWarn, models.TypeError, models.TypeDebug,
	}[i%5]
	return Record{Type: typ, Args: []interface{}{fmt.Sprintf("Log message %d with some content", i)}}
}
