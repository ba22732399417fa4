// Command analyze prints the board geometry in a human-readable form: the
// per-color entry and home-entry squares, where the safe squares fall along
// each color's route, an ASCII drawing of the board and a summary of the
// presets found in the configs directory.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/ludo-server/game/config"
	"github.com/wricardo/ludo-server/game/engine"
)

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	analyzeBoard(os.Stdout)

	presets, err := config.NewManager(configDir)
	if err != nil {
		fmt.Printf("\nSkipping presets: %v\n", err)
		return
	}
	analyzePresets(os.Stdout, presets)
}

// routeSafeSquares returns the relative steps along a color's route that
// land on a safe square, not counting the entry square itself.
func routeSafeSquares(color engine.Color) []int {
	var steps []int
	for rel := 1; rel < engine.HomeEntryRelSteps(color); rel++ {
		if engine.IsSafeIndex(engine.AbsoluteTrackIndex(color, rel)) {
			steps = append(steps, rel)
		}
	}
	return steps
}

func analyzeBoard(w io.Writer) {
	board := engine.Board()

	fmt.Fprintf(w, "=== Board ===\n")
	fmt.Fprintf(w, "Track squares: %d, home lane: %d, tokens per player: %d\n", len(board.Track), engine.HomeLen, engine.TokensPerPlayer)
	fmt.Fprintf(w, "Safe squares: %v\n\n", board.Safe)

	for _, color := range board.Colors {
		g := board.ByColor[color]
		fmt.Fprintf(w, "%-6s entry %2d  home entry %2d  track steps %d  safe stops at steps %v\n",
			color, g.Entry, g.HomeEntry, g.HomeEntryRelSteps, routeSafeSquares(color))
	}

	fmt.Fprintf(w, "\n")
	for _, line := range engine.Render(nil) {
		fmt.Fprintf(w, "  %s\n", strings.Join(strings.Split(line, ""), " "))
	}
}

func analyzePresets(w io.Writer, presets *config.Manager) {
	infos, err := presets.ListPresets()
	if err != nil {
		fmt.Fprintf(w, "\nError listing presets: %v\n", err)
		return
	}

	fmt.Fprintf(w, "\n=== Presets ===\n")
	for _, p := range infos {
		fmt.Fprintf(w, "%-10s %-10s players %d-%d  turn delay %5dms\n",
			p.PresetID, p.Name, p.MinPlayers, p.MaxPlayers, p.TurnDelayMs)
	}
}
