// Command sweep drives a running pathfinder server over its REST API. It
// places the target on every open cell in turn, runs A* from the fixed source
// and prints a map of path costs, flagging the cells the source cannot reach.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wricardo/gridpath/grid/engine"
	"github.com/wricardo/gridpath/grid/service"
)

const sessionFile = ".session"

// openSession resumes the given or saved session, creating a new one when neither works
func openSession(client *Client, configID, continueID, sessionFile string) error {
	savedSessionID := continueID
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		_, err := client.GetGrid()
		if err == nil {
			return nil
		}
		log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
		log.Printf("Creating new session...")
	}

	if _, err := client.CreateSession(configID); err != nil {
		return err
	}
	log.Printf("✨ Session created: %s", client.sessionID)

	if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
		log.Printf("Warning: Failed to save session ID: %v", err)
	}
	return nil
}

// sweep moves the target across every candidate cell and records each run
func sweep(client *Client, strategy *SweepStrategy, delay time.Duration, verbose bool) error {
	for {
		target, ok := strategy.NextTarget()
		if !ok {
			return nil
		}

		if _, err := client.EditCell(service.ActionTarget, target); err != nil {
			return err
		}
		result, err := client.Run()
		if err != nil {
			return err
		}

		strategy.Record(target, &CellResult{
			Reachable: result.Found,
			Cost:      result.Cost,
			Length:    result.PathLength,
			Expanded:  result.Expanded,
		})
		if verbose {
			log.Printf("Target (%d,%d): %s", target.X, target.Y, result.Message)
		}

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

func printSummary(sum Summary, grid *engine.GridSnapshot) {
	log.Printf("Cells swept: %d, reachable: %d, unreachable: %d", sum.Candidates, sum.Reachable, sum.Unreachable)
	if sum.Farthest != nil {
		log.Printf("Farthest cell: (%d,%d) at cost %d", sum.Farthest.X, sum.Farthest.Y, sum.MaxCost)
	}
	if sum.Candidates > 0 {
		log.Printf("Nodes expanded: %d total, %.1f per run", sum.Expanded, float64(sum.Expanded)/float64(sum.Candidates))
	}
	if grid.Source != nil {
		log.Printf("Source: (%d,%d) on a %dx%d grid", grid.Source.X, grid.Source.Y, grid.Width, grid.Height)
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Pathfinder server URL")
	configID := flag.String("config", "", "Grid template ID for a new session (default, classic, maze)")
	continueSession := flag.String("continue", "", "Sweep an existing session by ID")
	maxTargets := flag.Int("max-targets", 0, "Maximum cells to sweep (0 = all)")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between runs in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to pathfinder server at %s", *serverURL)
	client := NewClient(*serverURL)

	if err := openSession(client, *configID, *continueSession, sessionFile); err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}

	// Start from the template so earlier edits do not leak into the sweep
	log.Printf("🔄 Resetting grid...")
	grid, err := client.Reset()
	if err != nil {
		log.Fatalf("Failed to reset grid: %v", err)
	}

	strategy, err := NewSweepStrategy(grid)
	if err != nil {
		log.Fatalf("Cannot sweep session %s: %v", client.sessionID, err)
	}
	strategy.Limit(*maxTargets)

	if err := sweep(client, strategy, time.Duration(*delayMs)*time.Millisecond, *verbose); err != nil {
		log.Printf("❌ Sweep stopped: %v", err)
		os.Exit(1)
	}

	fmt.Println()
	strategy.WriteCostMap(os.Stdout)
	fmt.Println()
	printSummary(strategy.Summary(), grid)

	if _, err := client.Reset(); err != nil {
		log.Printf("Warning: Failed to restore grid: %v", err)
	}
	log.Printf("Session: %s", client.sessionID)
}
