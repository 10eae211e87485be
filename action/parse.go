package action

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pthm-cable/sprout/components"
)

// Parse reads one action from its text form, as produced by String:
//
//	still | none
//	move DX DY
//	build KIND X Y
//	transport X Y DX DY
//	deconstruct X Y [force]
//	drop WATER SUGAR
//
// Several actions separated by ";" form a Multiple.
func Parse(line string) (Action, error) {
	if strings.Contains(line, ";") {
		var m Multiple
		for _, part := range strings.Split(line, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			a, err := Parse(part)
			if err != nil {
				return nil, err
			}
			m.Actions = append(m.Actions, a)
		}
		return m, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty action")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "still", "wait":
		return Still{}, expectArgs(verb, args, 0)
	case "none":
		return None{}, expectArgs(verb, args, 0)
	case "move":
		if err := expectArgs(verb, args, 2); err != nil {
			return nil, err
		}
		dir, err := parseVec(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("move: %w", err)
		}
		if !dir.IsUnit() {
			return nil, fmt.Errorf("move: %v is not a unit step", dir)
		}
		return Move{Dir: dir}, nil
	case "build":
		if err := expectArgs(verb, args, 3); err != nil {
			return nil, err
		}
		kind, ok := components.ParseTileKind(args[0])
		if !ok || !kind.IsCell() || kind == components.KindGrowing {
			return nil, fmt.Errorf("build: unknown cell kind %q", args[0])
		}
		pos, err := parseVec(args[1], args[2])
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		return Build{Kind: kind, Pos: pos}, nil
	case "transport":
		if err := expectArgs(verb, args, 4); err != nil {
			return nil, err
		}
		pos, err := parseVec(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		dir, err := parseVec(args[2], args[3])
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		return BuildTransport{Kind: components.KindTransport, Pos: pos, Dir: dir}, nil
	case "deconstruct":
		if len(args) != 2 && len(args) != 3 {
			return nil, fmt.Errorf("deconstruct: expected 2 or 3 arguments, got %d", len(args))
		}
		pos, err := parseVec(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("deconstruct: %w", err)
		}
		force := len(args) == 3 && strings.EqualFold(args[2], "force")
		if len(args) == 3 && !force {
			return nil, fmt.Errorf("deconstruct: unknown flag %q", args[2])
		}
		return Deconstruct{Pos: pos, Force: force}, nil
	case "drop":
		if err := expectArgs(verb, args, 2); err != nil {
			return nil, err
		}
		water, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("drop: water: %w", err)
		}
		sugar, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("drop: sugar: %w", err)
		}
		return Drop{Water: water, Sugar: sugar}, nil
	}
	return nil, fmt.Errorf("unknown action %q", verb)
}

// ParseScript reads one action per line. Blank lines and lines starting
// with # are skipped.
func ParseScript(r io.Reader) ([]Action, error) {
	var out []Action
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		a, err := Parse(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return out, nil
}

func expectArgs(verb string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d arguments, got %d", verb, n, len(args))
	}
	return nil
}

func parseVec(xs, ys string) (components.Vec, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return components.Vec{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return components.Vec{}, fmt.Errorf("y: %w", err)
	}
	return components.Vec{X: x, Y: y}, nil
}
