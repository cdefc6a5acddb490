// Package engine provides the core search logic for the grid pathfinder.
//
// The engine package implements:
//   - A fixed-size grid of classified cells (empty, source, target, wall, path, open, closed)
//   - A* search with 8-directional movement and integer octile costs (10 straight, 14 diagonal)
//   - Per-cell node records exposing g, h and f costs after a run
//   - Grid template validation and conversion
//
// Core Types:
//
// The Engine interface defines the main contract, implemented by GridEngine.
// Each Cell carries its classification and, once discovered by a search, a Node
// holding costs and a coordinate back-reference to its predecessor.
//
// Usage:
//
//	eng, err := engine.NewEngine(20, 20)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	walls := []engine.Position{{X: 5, Y: 4}, {X: 5, Y: 5}}
//	if err := eng.Configure(20, 20, walls, engine.Position{X: 0, Y: 0}, engine.Position{X: 19, Y: 19}); err != nil {
//		log.Fatal(err)
//	}
//
//	path, err := eng.Run()
//	if errors.Is(err, engine.ErrPathNotFound) {
//		// expected outcome, the grid shows what was explored
//	}
//
// Search Rules:
//
// The open set is stable-sorted by f cost on every iteration, so equal costs are
// expanded in the order they were discovered. Neighbours are visited row by row.
// The search ends as soon as the target is discovered as a neighbour. Closed nodes
// are never reopened; the heuristic is consistent for these step costs.
package engine
