package ui

import (
	"fmt"

	"github.com/user/log-console-tui/pkg/models"
)

// SeverityFilterPanel edits the console's active level set
type SeverityFilterPanel struct {
	mode           string // "individual" or "range"
	selectedLevels map[models.Level]bool
	minLevel       models.Level
	levels         []models.Level
	cursor         int
}

// NewSeverityFilterPanel creates a panel with every level selected
func NewSeverityFilterPanel() *SeverityFilterPanel {
	sfp := &SeverityFilterPanel{
		mode:           "individual",
		selectedLevels: make(map[models.Level]bool),
		minLevel:       models.LevelWarning,
		levels:         models.AllLevels,
	}
	sfp.SelectAllLevels()
	return sfp
}

// SetMode sets the filtering mode ("individual" or "range")
func (sfp *SeverityFilterPanel) SetMode(mode string) error {
	if mode != "individual" && mode != "range" {
		return fmt.Errorf("invalid mode: %s (must be 'individual' or 'range')", mode)
	}
	sfp.mode = mode
	return nil
}

// GetMode returns the current filtering mode
func (sfp *SeverityFilterPanel) GetMode() string {
	return sfp.mode
}

// ToggleLevel toggles a level for individual mode
func (sfp *SeverityFilterPanel) ToggleLevel(level models.Level) error {
	if !sfp.isValidLevel(level) {
		return fmt.Errorf("invalid severity level: %s", level)
	}
	sfp.selectedLevels[level] = !sfp.selectedLevels[level]
	return nil
}

// SetMinimumLevel sets the lowest level shown in range mode
func (sfp *SeverityFilterPanel) SetMinimumLevel(level models.Level) error {
	if !sfp.isValidLevel(level) {
		return fmt.Errorf("invalid severity level: %s", level)
	}
	sfp.minLevel = level
	return nil
}

// GetMinimumLevel returns the minimum level (range mode)
func (sfp *SeverityFilterPanel) GetMinimumLevel() models.Level {
	return sfp.minLevel
}

// IsLevelSelected returns whether a level is selected (individual mode)
func (sfp *SeverityFilterPanel) IsLevelSelected(level models.Level) bool {
	return sfp.selectedLevels[level]
}

// SelectAllLevels selects every level
func (sfp *SeverityFilterPanel) SelectAllLevels() {
	for _, level := range sfp.levels {
		sfp.selectedLevels[level] = true
	}
}

// DeselectAllLevels clears the selection
func (sfp *SeverityFilterPanel) DeselectAllLevels() {
	for _, level := range sfp.levels {
		sfp.selectedLevels[level] = false
	}
}

// SyncFrom loads the panel from the console's active levels
func (sfp *SeverityFilterPanel) SyncFrom(active []models.Level) {
	sfp.mode = "individual"
	sfp.DeselectAllLevels()
	for _, level := range active {
		if sfp.isValidLevel(level) {
			sfp.selectedLevels[level] = true
		}
	}
}

// Levels returns the level set the panel describes, in display order
func (sfp *SeverityFilterPanel) Levels() ([]models.Level, error) {
	var out []models.Level
	switch sfp.mode {
	case "individual":
		for _, level := range sfp.levels {
			if sfp.selectedLevels[level] {
				out = append(out, level)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("at least one severity level must be selected in individual mode")
		}
	case "range":
		reached := false
		for _, level := range sfp.levels {
			if level == sfp.minLevel {
				reached = true
			}
			if reached {
				out = append(out, level)
			}
		}
	default:
		return nil, fmt.Errorf("invalid mode: %s", sfp.mode)
	}
	return out, nil
}

// CountSelectedLevels returns the number of selected levels
func (sfp *SeverityFilterPanel) CountSelectedLevels() int {
	count := 0
	for _, selected := range sfp.selectedLevels {
		if selected {
			count++
		}
	}
	return count
}

// MoveCursor moves the highlighted row by delta, clamped to the level list
func (sfp *SeverityFilterPanel) MoveCursor(delta int) {
	sfp.cursor = maxInt(0, minInt(len(sfp.levels)-1, sfp.cursor+delta))
}

// Activate toggles or picks the level under the cursor depending on mode
func (sfp *SeverityFilterPanel) Activate() error {
	if sfp.cursor < 0 || sfp.cursor >= len(sfp.levels) {
		return fmt.Errorf("no level under cursor %d", sfp.cursor)
	}
	current := sfp.levels[sfp.cursor]
	if sfp.mode == "individual" {
		return sfp.ToggleLevel(current)
	}
	return sfp.SetMinimumLevel(current)
}

// ToggleMode switches between individual and range, seeding the minimum
// from the cursor
func (sfp *SeverityFilterPanel) ToggleMode() {
	if sfp.mode == "individual" {
		sfp.mode = "range"
		sfp.minLevel = sfp.levels[sfp.cursor]
		return
	}
	sfp.mode = "individual"
}

func (sfp *SeverityFilterPanel) isValidLevel(level models.Level) bool {
	for _, l := range sfp.levels {
		if l == level {
			return true
		}
	}
	return false
}

// SeverityPreset is a pre-configured level set
type SeverityPreset struct {
	Name     string
	Levels   []models.Level
	MinLevel models.Level
	Mode     string
}

// GetFilterPresets returns common presets
func (sfp *SeverityFilterPanel) GetFilterPresets() []SeverityPreset {
	return []SeverityPreset{
		{Name: "Errors", Levels: []models.Level{models.LevelError}, Mode: "individual"},
		{Name: "Warnings & Above", MinLevel: models.LevelWarning, Mode: "range"},
		{Name: "All Levels", Levels: sfp.levels, Mode: "individual"},
	}
}

// ApplyPreset loads a preset into the panel
func (sfp *SeverityFilterPanel) ApplyPreset(preset SeverityPreset) error {
	if err := sfp.SetMode(preset.Mode); err != nil {
		return err
	}
	if preset.Mode == "range" {
		return sfp.SetMinimumLevel(preset.MinLevel)
	}
	sfp.DeselectAllLevels()
	for _, level := range preset.Levels {
		if err := sfp.ToggleLevel(level); err != nil {
			return err
		}
	}
	return nil
}

// Summary describes the level set for the status line
func (sfp *SeverityFilterPanel) Summary(active []models.Level) string {
	switch len(active) {
	case 0:
		return "none"
	case len(sfp.levels):
		return "all"
	}
	if sfp.mode == "range" {
		return ">=" + string(sfp.minLevel)
	}
	if len(active) <= 2 {
		s := ""
		for i, l := range active {
			if i > 0 {
				s += ","
			}
			s += string(l)
		}
		return s
	}
	return fmt.Sprintf("%d selected", len(active))
}
