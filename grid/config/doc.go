// Package config provides grid template management for the pathfinder.
//
// The config package handles:
//   - Loading grid templates from JSON or YAML files
//   - Template validation through the engine
//   - Default template selection
//   - Template discovery and listing
//
// Template Format:
//
// Templates live in the configs directory as .json, .yaml or .yml files.
// Each row of the layout is one string, one character per cell:
//
//	. empty   # wall   S source   T target
//
// A template may leave out the source, the target or both; a session created
// from it needs them placed before a search can run.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := manager.LoadConfig("maze")
//	if errors.Is(err, config.ErrConfigNotFound) {
//		// list what is available
//		infos, _ := manager.ListConfigs()
//	}
//
// The default template is classic when present, otherwise the first valid
// template by name, otherwise an empty 20x20 grid.
package config
