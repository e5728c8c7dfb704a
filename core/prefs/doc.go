// Package prefs stores per-user tooling preferences such as label scope toggles.
//
// Two implementations satisfy registry.Preferences:
//
//   - Memory: a map-backed store used by tests and one-shot commands.
//   - File: a YAML document on disk, loaded lazily and rewritten when a value changes.
//
// Values decoded from YAML keep whatever type the file used ("true", 1, yes), so
// reads go through the utils conversion helpers.
//
// # Usage
//
//	p := prefs.NewFile(cfg.Prefs.Path, logger)
//	p.SetBool("Sprites_label_ui_Display", true)
package prefs
