package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/scenario"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <campaign.yaml> [more.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

var snakeCase = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("campaign file must have .yaml or .yml extension: %s", baseName)
	}
	if !snakeCase.MatchString(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("campaign filename '%s' must be lowercase snake_case (e.g., my_campaign.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	c, err := scenario.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	fmt.Printf("  %q: %.0fx%.0f world, %d objects, %d missions (%d available), %d shop items\n",
		c.Name, c.WorldWidth, c.WorldHeight, len(c.Objects), len(c.Missions),
		c.Missions.CountWithStatus(mission.StatusAvailable), len(c.Shop))
	return nil
}
