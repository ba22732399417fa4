// Package config loads room presets for the Ludo server.
//
// A preset is a JSON file in the config directory; its file name without the
// .json extension is the preset id used when creating a room:
//
//	{
//	  "name": "Quick",
//	  "description": "Short delays for fast games",
//	  "min_players": 2,
//	  "max_players": 4,
//	  "turn_delay_ms": 500,
//	  "room_code_length": 5,
//	  "messages": {"turn_to_roll": "{name}, roll!"}
//	}
//
// Message templates that are left out fall back to the English defaults.
// When no classic.json exists, the built-in classic preset is the default.
//
// Usage:
//
//	m, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	preset, err := m.LoadPreset("quick")
package config
