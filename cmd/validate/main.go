package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/scenario"
	"github.com/jwebster45206/trigger-engine/pkg/trigger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.ini|scenario.yaml> [...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -kinds\n", os.Args[0])
		os.Exit(1)
	}
	if os.Args[1] == "-kinds" {
		printKinds(os.Stdout)
		return
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := validateFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// validateFile lints the scenario a fixture or trigger file belongs to.
func validateFile(path string) error {
	fmt.Printf("Validating %s...\n", path)

	dir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	s, err := scenario.Load(dir, name)
	if err != nil {
		return err
	}
	// Fixture problems surface here before the triggers are looked at.
	if _, _, err := s.Start(nil); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	problems := 0
	for _, f := range Lint(s) {
		fmt.Println("  " + f.String())
		if f.Severity == SeverityError {
			problems++
		}
	}
	if problems > 0 {
		return fmt.Errorf("%s: %d error(s)", name, problems)
	}

	fmt.Printf("Scenario %s is valid!\n", name)
	return nil
}

// printKinds lists the event and action names a [Triggers] entry may use,
// with what each one requires.
func printKinds(out io.Writer) {
	fmt.Fprintln(out, "Events:")
	for _, e := range trigger.Events() {
		var needs []string
		if trigger.EventNeedsObject(e) {
			needs = append(needs, "object")
		}
		if trigger.EventNeedsHouse(e) {
			needs = append(needs, "house")
		}
		if trigger.EventNeedsData(e) {
			needs = append(needs, "data")
		}
		writeKind(out, e.String(), needs)
	}
	fmt.Fprintln(out, "Actions:")
	for _, a := range trigger.Actions() {
		var needs []string
		if trigger.ActionNeedsTeam(a) {
			needs = append(needs, "team")
		}
		writeKind(out, a.String(), needs)
	}
}

func writeKind(out io.Writer, name string, needs []string) {
	if len(needs) == 0 {
		fmt.Fprintf(out, "  %s\n", name)
		return
	}
	fmt.Fprintf(out, "  %-20s needs %s\n", name, strings.Join(needs, ", "))
}
