// Command validate checks the room preset JSON files in a directory
// (../configs by default, or the first argument). It checks:
//   - JSON structure, rejecting unknown fields
//   - Player limits, turn delay and room code length ranges
//   - Message templates: every template names the player with {name} and
//     uses no placeholder other than {name} and {dice}
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wricardo/ludo-server/game/config"
	"github.com/wricardo/ludo-server/game/service"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var placeholder = regexp.MustCompile(`\{[a-z_]+\}`)

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validatePreset loads and validates a single preset file.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	// Strict decode catches misspelled keys that Parse would silently ignore
	var raw service.Preset
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	preset, err := config.Parse(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	custom := 0
	for key, tmpl := range messageTemplates(raw.Messages) {
		if tmpl == "" {
			continue
		}
		custom++
		if !strings.Contains(tmpl, "{name}") {
			result.fail("Message %s does not mention {name}", key)
		}
		for _, p := range placeholder.FindAllString(tmpl, -1) {
			if p != "{name}" && p != "{dice}" {
				result.fail("Message %s uses unknown placeholder %s", key, p)
			}
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Players: %d-%d", preset.MinPlayers, preset.MaxPlayers))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Turn delay: %dms", preset.TurnDelayMs))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Room code length: %d", preset.RoomCodeLength))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Custom messages: %d", custom))
	}

	return result
}

func messageTemplates(m service.Messages) map[string]string {
	return map[string]string{
		"created":      m.Created,
		"joined":       m.Joined,
		"started":      m.Started,
		"rolled":       m.Rolled,
		"no_moves":     m.NoMoves,
		"three_sixes":  m.ThreeSixes,
		"turn_to_roll": m.TurnToRoll,
		"won":          m.Won,
		"left":         m.Left,
		"last_player":  m.LastPlayer,
		"reconnected":  m.Reconnected,
	}
}

// main validates every *.json file in the preset directory, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No preset files in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePreset(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
