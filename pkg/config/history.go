package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const historyFileName = "history.json"

// HistoryRecord is one submitted prompt value
type HistoryRecord struct {
	Mode      string    `json:"mode"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
	UseCount  int       `json:"useCount"`
}

// PromptHistory stores the filter, pattern and expression prompt histories.
type PromptHistory struct {
	Records []HistoryRecord `json:"records"`
}

// HistoryPath returns the history file next to the config file
func HistoryPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFileName), nil
}

// LoadHistoryFile reads the history at path. A missing file is an empty history.
func LoadHistoryFile(path string) (PromptHistory, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return PromptHistory{Records: []HistoryRecord{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptHistory{}, err
	}
	var h PromptHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return PromptHistory{}, err
	}
	if h.Records == nil {
		h.Records = []HistoryRecord{}
	}
	return h, nil
}

// SaveHistoryFile writes h to path
func SaveHistoryFile(path string, h PromptHistory) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// UpsertHistory moves record to the front of its mode, bumping the use count
// of an existing value, and keeps at most maxPerMode values per mode.
func UpsertHistory(h PromptHistory, record HistoryRecord, maxPerMode int) PromptHistory {
	record.Mode = strings.TrimSpace(record.Mode)
	record.Value = strings.TrimSpace(record.Value)
	if record.Mode == "" || record.Value == "" {
		return h
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	if record.UseCount <= 0 {
		record.UseCount = 1
	}

	records := make([]HistoryRecord, 0, len(h.Records)+1)
	for _, r := range h.Records {
		if r.Mode == record.Mode && r.Value == record.Value {
			record.UseCount = r.UseCount + 1
			continue
		}
		records = append(records, r)
	}
	records = append([]HistoryRecord{record}, records...)
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].UpdatedAt.After(records[b].UpdatedAt)
	})

	if maxPerMode > 0 {
		kept := records[:0]
		perMode := make(map[string]int)
		for _, r := range records {
			if perMode[r.Mode] >= maxPerMode {
				continue
			}
			perMode[r.Mode]++
			kept = append(kept, r)
		}
		records = kept
	}
	h.Records = records
	return h
}

// Values lists the values submitted in mode, newest first
func (h PromptHistory) Values(mode string) []string {
	var values []string
	for _, r := range h.Records {
		if r.Mode == mode {
			values = append(values, r.Value)
		}
	}
	return values
}
