package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"go-stepseq/sequencer"
)

// env is what line commands operate on
type env struct {
	manager *sequencer.Manager
	status  func() string
}

type command struct {
	name  string
	help  string
	run   func(*env, []string) (string, error)
	arity int // -n means len(args) must be >= n
}

var commands []command

func init() {
	commands = []command{
		{"play", "start from step 1", playCommand, 0},
		{"stop", "stop playback", stopCommand, 0},
		{"bpm", "bpm <tempo>", bpmCommand, 1},
		{"step", "step <1-16>... toggles steps", stepCommand, -1},
		{"pattern", "pattern <x...x...x...x...> replaces all steps", patternCommand, 1},
		{"show", "print pattern and transport", showCommand, 0},
		{"help", "list commands", helpCommand, 0},
	}
}

func (e *env) eval(input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			if len(args) < -cmd.arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, -cmd.arity, len(args))
			}
		} else if len(args) != cmd.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(args))
		}
		return cmd.run(e, args)
	}
	return "", fmt.Errorf("unknown command: %s (try help)", name)
}

func playCommand(e *env, args []string) (string, error) {
	e.manager.Play()
	return "", nil
}

func stopCommand(e *env, args []string) (string, error) {
	e.manager.Stop()
	return "", nil
}

func bpmCommand(e *env, args []string) (string, error) {
	bpm, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "", fmt.Errorf("%w: bpm %q is not a number", sequencer.ErrConfiguration, args[0])
	}
	if err := e.manager.SetTempo(bpm); err != nil {
		return "", err
	}
	return fmt.Sprintf("%.1f bpm", bpm), nil
}

func stepCommand(e *env, args []string) (string, error) {
	var steps []int
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > sequencer.NumSteps {
			return "", fmt.Errorf("%w: step %q out of range 1-%d", sequencer.ErrConfiguration, arg, sequencer.NumSteps)
		}
		steps = append(steps, n-1)
	}
	for _, s := range steps {
		e.manager.ToggleStep(s)
	}
	return e.manager.Pattern().String(), nil
}

func patternCommand(e *env, args []string) (string, error) {
	p, err := sequencer.ParsePattern(args[0])
	if err != nil {
		return "", err
	}
	for i, active := range p.Snapshot() {
		if e.manager.Pattern().Active(i) != active {
			e.manager.ToggleStep(i)
		}
	}
	return e.manager.Pattern().String(), nil
}

func showCommand(e *env, args []string) (string, error) {
	st := e.manager.State()
	out := fmt.Sprintf("%s  %s %.1f bpm", e.manager.Pattern(), st.State, st.Tempo)
	if e.status != nil {
		out += "  " + e.status()
	}
	if err := e.manager.Err(); err != nil {
		out += "\nerror: " + err.Error()
	}
	return out, nil
}

func helpCommand(e *env, args []string) (string, error) {
	var lines []string
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("  %-8s %s", cmd.name, cmd.help))
	}
	return strings.Join(lines, "\n"), nil
}

// repl reads commands until ctrl+d or ctrl+c
func repl(e *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		result, err := e.eval(line)
		if err != nil {
			fmt.Println(err)
		} else if result != "" {
			fmt.Println(result)
		}
	}
}
