// Command gametest smoke-tests a directory of story files: it loads
// each one and steps it until the first input request (or a fatal
// error), recording whether it got that far and what it printed along
// the way. Useful as a quick regression check across a whole story
// library after a decoder change, without needing a human at the
// keyboard for each one.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aldermoor/zif/zmachine"
)

// TestResult captures the outcome of running a single game.
type TestResult struct {
	Filename     string   `json:"filename"`
	Version      uint8    `json:"version"`
	Success      bool     `json:"success"`
	FirstScreen  []string `json:"first_screen,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

const maxStepsBeforeTimeout = 200000

func main() {
	storiesDir := flag.String("stories", "stories", "directory containing Z-machine story files")
	outputDir := flag.String("output", "testdata", "directory to write results to")
	singleGame := flag.String("game", "", "test a single game file instead of all games")
	flag.Parse()

	if *singleGame != "" {
		runSingleGame(*singleGame)
		return
	}

	runAllGames(*storiesDir, *outputDir)
}

var zcodeSuffixes = []string{".z1", ".z2", ".z3", ".z4", ".z5", ".z6", ".z7", ".z8"}

func hasZcodeSuffix(name string) bool {
	for _, suf := range zcodeSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

func runAllGames(storiesDir, outputDir string) {
	if _, err := os.Stat(storiesDir); os.IsNotExist(err) {
		fmt.Printf("Stories directory not found: %s\n", storiesDir)
		fmt.Println("Run 'go run ./cmd/zifetch -all' first to download games.")
		os.Exit(1)
	}

	entries, err := os.ReadDir(storiesDir)
	if err != nil {
		fmt.Printf("Failed to read stories directory: %v\n", err)
		os.Exit(1)
	}

	var games []string
	for _, entry := range entries {
		if hasZcodeSuffix(entry.Name()) {
			games = append(games, filepath.Join(storiesDir, entry.Name()))
		}
	}

	if len(games) == 0 {
		fmt.Printf("No game files found in %s\n", storiesDir)
		os.Exit(1)
	}

	fmt.Printf("Found %d games to test\n", len(games))

	var results []TestResult
	for i, gamePath := range games {
		result := runGameTest(gamePath)
		results = append(results, result)

		status := "✓"
		if !result.Success {
			status = "✗"
		}
		fmt.Printf("[%d/%d] %s %s\n", i+1, len(games), status, result.Filename)
		if !result.Success && result.ErrorMessage != "" {
			fmt.Printf("        Error: %s\n", result.ErrorMessage)
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	resultsPath := filepath.Join(outputDir, "test_results.json")
	resultsJSON, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(resultsPath, resultsJSON, 0644); err != nil {
		fmt.Printf("Failed to write results: %v\n", err)
	} else {
		fmt.Printf("\nResults written to %s\n", resultsPath)
	}

	passed, failed := 0, 0
	for _, r := range results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}
	fmt.Printf("\n=== SUMMARY ===\nPassed: %d\nFailed: %d\nTotal: %d\n", passed, failed, len(results))

	screenshotsPath := filepath.Join(outputDir, "screenshots.txt")
	var screenshots strings.Builder
	for _, r := range results {
		fmt.Fprintf(&screenshots, "=== %s (v%d) ===\n", r.Filename, r.Version)
		if r.Success {
			for _, line := range r.FirstScreen {
				screenshots.WriteString(line + "\n")
			}
		} else {
			fmt.Fprintf(&screenshots, "ERROR: %s\n", r.ErrorMessage)
		}
		screenshots.WriteString("\n")
	}
	os.WriteFile(screenshotsPath, []byte(screenshots.String()), 0644)
}

func runSingleGame(gamePath string) {
	if _, err := os.Stat(gamePath); os.IsNotExist(err) {
		fmt.Printf("Game file not found: %s\n", gamePath)
		os.Exit(1)
	}

	result := runGameTest(gamePath)

	fmt.Printf("Game: %s\n", result.Filename)
	fmt.Printf("Version: %d\n", result.Version)
	fmt.Printf("Success: %v\n", result.Success)
	if result.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", result.ErrorMessage)
	}
	fmt.Printf("First Screen:\n%s\n", strings.Join(result.FirstScreen, "\n"))
}

// runGameTest loads a story and steps it until the first input request,
// a fatal error, or maxStepsBeforeTimeout steps elapse (a story that
// never asks for input within that budget is treated as a hang).
func runGameTest(gamePath string) (result TestResult) {
	result.Filename = filepath.Base(gamePath)

	storyBytes, err := os.ReadFile(gamePath)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to read file: %v", err)
		return
	}
	if len(storyBytes) < 64 {
		result.ErrorMessage = "file too small to be a valid Z-machine file"
		return
	}
	result.Version = storyBytes[0]

	z, err := zmachine.LoadStory(storyBytes, zmachine.DefaultOptions())
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to load story: %v", err)
		return
	}

	var screen strings.Builder
	for steps := 0; steps < maxStepsBeforeTimeout; steps++ {
		switch e := z.Step().(type) {
		case zmachine.Output:
			for _, run := range z.Screen.DrainLowerOutput() {
				screen.WriteString(run.Text)
			}
		case zmachine.ReadLine, zmachine.ReadChar:
			result.Success = true
			result.FirstScreen = strings.Split(screen.String(), "\n")
			return
		case zmachine.Done:
			if e.Err != nil {
				result.ErrorMessage = e.Err.Error()
				return
			}
			result.Success = true
			result.FirstScreen = strings.Split(screen.String(), "\n")
			return
		case zmachine.Warning:
			// non-fatal, keep stepping
		}
	}

	result.ErrorMessage = "timeout waiting for first input request"
	return
}
