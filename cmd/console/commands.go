package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/trigger-engine/pkg/queue"
)

const commandHelp = `Events:
• tick [n]                 advance n game ticks (default 1)
• enter <cell> [house]     a house's unit enters a cell
• capture <object> [house] a house captures an object
• discover <object>        the player discovers an object
• attack <object>          an object is attacked
• destroy <object>         an object is destroyed
• credits <amount> [house] set a house's credits
• build <type> [house]     a house finishes a building type
• evacuate [house]         civilians are evacuated

Commands:
• /help     show this help
• /refresh  reload the game
• /copy     copy the live [Triggers] section to the clipboard
• Ctrl+C    quit`

// parseCommand turns one line of console input into an event. The house
// argument is optional everywhere and defaults to the player's house.
func parseCommand(input string) (*queue.Event, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	ev := &queue.Event{}
	switch verb {
	case "tick":
		ev.Kind = queue.KindTick
		ev.Ticks = 1
		if len(args) > 0 {
			n, err := atoi("tick count", args[0])
			if err != nil {
				return nil, err
			}
			ev.Ticks = n
		}
	case "enter":
		if len(args) == 0 {
			return nil, fmt.Errorf("usage: enter <cell> [house]")
		}
		cell, err := atoi("cell", args[0])
		if err != nil {
			return nil, err
		}
		ev.Kind, ev.Cell = queue.KindEnterCell, cell
		ev.House = optional(args, 1)
	case "capture", "discover", "attack", "destroy":
		if len(args) == 0 {
			return nil, fmt.Errorf("usage: %s <object>", verb)
		}
		ev.Kind, ev.Object = queue.EventKind(verb), args[0]
		if verb == "capture" {
			ev.House = optional(args, 1)
		}
	case "credits", "build":
		if len(args) == 0 {
			return nil, fmt.Errorf("usage: %s <value> [house]", verb)
		}
		v, err := atoi(verb, args[0])
		if err != nil {
			return nil, err
		}
		ev.Kind, ev.Value = queue.EventKind(verb), v
		ev.House = optional(args, 1)
	case "evacuate":
		ev.Kind = queue.KindEvacuate
		ev.House = optional(args, 0)
	default:
		return nil, fmt.Errorf("unknown command %q (try /help)", verb)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

func atoi(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
