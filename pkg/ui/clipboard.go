package ui

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/user/log-console-tui/pkg/format"
	"github.com/user/log-console-tui/pkg/models"
)

// ClipboardManager copies console entries and evaluation results to the
// system clipboard. It satisfies host.Clipboard.
type ClipboardManager struct {
	lastCopied string
	copyFormat string // "line", "text", "json"
	write      func(string) error
	system     bool
}

// NewClipboardManager creates a manager writing to the system clipboard
func NewClipboardManager() *ClipboardManager {
	return &ClipboardManager{
		copyFormat: "line",
		write:      clipboard.WriteAll,
		system:     true,
	}
}

// NewClipboardManagerWith creates a manager that hands copies to write
func NewClipboardManagerWith(write func(string) error) *ClipboardManager {
	return &ClipboardManager{copyFormat: "line", write: write}
}

// Copy writes text to the clipboard
func (cm *ClipboardManager) Copy(text string) error {
	if cm.system && clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (pbcopy, xclip, xsel, wl-copy)")
	}
	if err := cm.write(text); err != nil {
		return err
	}
	cm.lastCopied = text
	return nil
}

// CopyEntry formats an entry and copies it
func (cm *ClipboardManager) CopyEntry(entry *models.Entry, copyFormat string) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("entry is nil")
	}

	var content string
	switch copyFormat {
	case "line":
		content = cm.formatLine(entry)
	case "text":
		content = entry.Text
	case "json":
		content = cm.formatJSON(entry)
	default:
		return "", fmt.Errorf("invalid format: %s", copyFormat)
	}

	if err := cm.Copy(content); err != nil {
		return "", err
	}
	return content, nil
}

// CopyEntryDefault copies an entry with the default format
func (cm *ClipboardManager) CopyEntryDefault(entry *models.Entry) (string, error) {
	return cm.CopyEntry(entry, cm.copyFormat)
}

func (cm *ClipboardManager) formatLine(entry *models.Entry) string {
	line := fmt.Sprintf("%s: %s", entry.Type, entry.Text)
	if entry.Header != nil && entry.Header.Time != "" {
		line = fmt.Sprintf("[%s] %s", entry.Header.Time, line)
	}
	if entry.Count > 1 {
		line = fmt.Sprintf("%s (x%d)", line, entry.Count)
	}
	return line
}

func (cm *ClipboardManager) formatJSON(entry *models.Entry) string {
	doc := map[string]interface{}{
		"id":    entry.ID,
		"type":  string(entry.Type),
		"level": string(entry.Level()),
		"count": entry.Count,
		"text":  entry.Text,
	}
	if entry.Header != nil {
		doc["time"] = entry.Header.Time
		doc["from"] = entry.Header.From
	}
	return format.Indented(doc)
}

// GetLastCopied returns the last copied content
func (cm *ClipboardManager) GetLastCopied() string {
	return cm.lastCopied
}

// copyFormats lists the formats CopyEntry accepts, in cycling order
var copyFormats = []string{"line", "text", "json"}

// SetCopyFormat sets the default copy format
func (cm *ClipboardManager) SetCopyFormat(copyFormat string) error {
	for _, f := range copyFormats {
		if f == copyFormat {
			cm.copyFormat = copyFormat
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s", copyFormat)
}

// GetCopyFormat returns the current copy format
func (cm *ClipboardManager) GetCopyFormat() string {
	return cm.copyFormat
}
