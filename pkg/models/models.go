package models

import (
	"fmt"
	"reflect"
	"strings"
)

// EntryType tags what kind of record an Entry is
type EntryType string

// Entry types accepted by the console
const (
	TypeLog            EntryType = "log"
	TypeWarn           EntryType = "warn"
	TypeError          EntryType = "error"
	TypeInfo           EntryType = "info"
	TypeDebug          EntryType = "debug"
	TypeGroup          EntryType = "group"
	TypeGroupCollapsed EntryType = "groupCollapsed"
	TypeGroupEnd       EntryType = "groupEnd"
	TypeTable          EntryType = "table"
	TypeDir            EntryType = "dir"
	TypeHTML           EntryType = "html"
	TypeInput          EntryType = "input"
	TypeOutput         EntryType = "output"
)

// EntryTypes lists every known entry type
var EntryTypes = []EntryType{
	TypeLog,
	TypeWarn,
	TypeError,
	TypeInfo,
	TypeDebug,
	TypeGroup,
	TypeGroupCollapsed,
	TypeGroupEnd,
	TypeTable,
	TypeDir,
	TypeHTML,
	TypeInput,
	TypeOutput,
}

// Valid reports whether t is a known entry type
func (t EntryType) Valid() bool {
	for _, known := range EntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// OpensGroup reports whether admitting t pushes a new group
func (t EntryType) OpensGroup() bool {
	return t == TypeGroup || t == TypeGroupCollapsed
}

// Structural reports whether t is never merged by repeat coalescing
func (t EntryType) Structural() bool {
	switch t {
	case TypeGroup, TypeGroupCollapsed, TypeGroupEnd, TypeHTML:
		return true
	}
	return false
}

// Level returns the filter level an entry of type t belongs to
func (t EntryType) Level() Level {
	switch t {
	case TypeDebug:
		return LevelVerbose
	case TypeWarn:
		return LevelWarning
	case TypeError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Level is a filterable severity bucket
type Level string

// Levels in display order
const (
	LevelVerbose Level = "verbose"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// AllLevels is the default active level set
var AllLevels = []Level{
	LevelVerbose,
	LevelInfo,
	LevelWarning,
	LevelError,
}

// ParseLevel parses a level name, accepting a few common aliases
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "debug":
		return LevelVerbose, nil
	case "info", "log":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error", "err":
		return LevelError, nil
	}
	return "", fmt.Errorf("invalid level: %s", s)
}

// GroupID addresses a Group in the console's group arena
type GroupID int

// NoGroup marks an entry outside any group
const NoGroup GroupID = -1

// Group is a collapsible nesting context
type Group struct {
	ID          string
	Collapsed   bool
	Parent      GroupID
	IndentLevel int
}

// Header carries the optional time/origin line shown above an entry
type Header struct {
	Time string
	From string
}

// Fragment is the mountable representation of an entry
type Fragment string

// Entry is one admitted log record
type Entry struct {
	ID           int64
	Type         EntryType
	Args         []interface{}
	Group        GroupID
	TargetGroup  GroupID
	Header       *Header
	Count        int
	Collapsed    bool
	IgnoreFilter bool
	// ClosedLevels counts nesting guides marked closed by group ends
	ClosedLevels int
	Width        int
	Height       int

	Text     string
	Fragment Fragment
}

// Level returns the entry's filter level
func (e *Entry) Level() Level {
	return e.Type.Level()
}

// IsSimple reports whether the entry has no nested inspectable payload
func (e *Entry) IsSimple() bool {
	for _, arg := range e.Args {
		if !isPrimitive(arg) {
			return false
		}
	}
	return true
}

// ResetSize forces the entry to be measured again
func (e *Entry) ResetSize() {
	e.Width = 0
	e.Height = 0
}

func isPrimitive(v interface{}) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(error); ok {
		return true
	}
	if _, ok := v.(fmt.Stringer); ok {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
