// Package source turns line-oriented input into console records: a line
// parser with group markers, a reader, a file follower and a demo feed.
package source

import (
	"regexp"
	"strings"

	"github.com/user/log-console-tui/pkg/console"
	"github.com/user/log-console-tui/pkg/models"
)

// Record is one parsed line ready for Console.Append
type Record struct {
	Type models.EntryType
	Args []interface{}
}

// Sink receives parsed records
type Sink func(Record)

var prefixes = map[string]models.EntryType{
	"[log]":   models.TypeLog,
	"[info]":  models.TypeInfo,
	"[warn]":  models.TypeWarn,
	"[error]": models.TypeError,
	"[debug]": models.TypeDebug,
}

var keywordPattern = regexp.MustCompile(`\b(ERROR|ERR|FATAL|PANIC|WARN|WARNING|DEBUG|TRACE|INFO)\b|level=(error|warn|warning|debug|trace|info)\b`)

// ParseLine classifies a line. `>> label` opens a group, `>>+ label` opens a
// collapsed one and `<<` closes it. A leading [warn], [error], [debug],
// [info] or [log] tag sets the type; otherwise level keywords such as ERROR
// or level=warn are detected. Blank lines are skipped.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Record{}, false
	}

	switch {
	case trimmed == "<<":
		return Record{Type: models.TypeGroupEnd}, true
	case strings.HasPrefix(trimmed, ">>+"):
		return groupRecord(models.TypeGroupCollapsed, trimmed[3:]), true
	case strings.HasPrefix(trimmed, ">>"):
		return groupRecord(models.TypeGroup, trimmed[2:]), true
	}

	if strings.HasPrefix(trimmed, "[") {
		if end := strings.Index(trimmed, "]"); end > 0 {
			if typ, ok := prefixes[strings.ToLower(trimmed[:end+1])]; ok {
				return Record{Type: typ, Args: []interface{}{strings.TrimSpace(trimmed[end+1:])}}, true
			}
		}
	}

	return Record{Type: detect(line), Args: []interface{}{line}}, true
}

func groupRecord(typ models.EntryType, label string) Record {
	label = strings.TrimSpace(label)
	if label == "" {
		return Record{Type: typ}
	}
	return Record{Type: typ, Args: []interface{}{label}}
}

func detect(line string) models.EntryType {
	m := keywordPattern.FindStringSubmatch(line)
	if m == nil {
		return models.TypeLog
	}
	word := strings.ToLower(m[1] + m[2])
	switch word {
	case "error", "err", "fatal", "panic":
		return models.TypeError
	case "warn", "warning":
		return models.TypeWarn
	case "debug", "trace":
		return models.TypeDebug
	default:
		return models.TypeInfo
	}
}

// Append admits r into c. Group openers bypass filtering like the
// console's own group helpers.
func Append(c *console.Console, r Record) {
	c.Append(r.Type, r.Args, console.AppendOptions{IgnoreFilter: r.Type.OpensGroup()})
}

// ConsoleSink appends every record to c
func ConsoleSink(c *console.Console) Sink {
	return func(r Record) {
		Append(c, r)
	}
}
