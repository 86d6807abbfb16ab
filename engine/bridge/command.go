package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ack is the reply sent after every processed command.
const Ack = "ok"

// ErrMalformedCommand is returned for a line that is not a valid bridge command.
var ErrMalformedCommand = errors.New("bridge: malformed command")

// CommandKind identifies a bridge command.
type CommandKind int

const (
	// CommandKeys queues characters for key replay.
	CommandKeys CommandKind = iota
	// CommandMouse rotates the camera by a pointer delta.
	CommandMouse
	// CommandForward flies the camera forward.
	CommandForward
	// CommandRoll rolls the camera.
	CommandRoll
)

func (k CommandKind) String() string {
	switch k {
	case CommandKeys:
		return "K"
	case CommandMouse:
		return "M"
	case CommandForward:
		return "F"
	case CommandRoll:
		return "R"
	}
	return "?"
}

// Command is one parsed protocol line.
type Command struct {
	Kind   CommandKind
	Chars  string
	DX, DY float64
	Amount float64
}

// ParseCommand parses one line of the bridge protocol. The trailing line terminator is
// optional.
//
//	K<chars>    queue characters for key replay
//	M<dx> <dy>  rotate as a pointer drag
//	F<amount>   fly forward
//	R<amount>   roll
//
// Parameters:
//   - line: the line to parse
//
// Returns:
//   - Command: the parsed command
//   - error: ErrMalformedCommand if the line is not a valid command
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Command{}, fmt.Errorf("%w: empty line", ErrMalformedCommand)
	}
	body := line[1:]
	switch line[0] {
	case 'K':
		return Command{Kind: CommandKeys, Chars: body}, nil
	case 'M':
		f := strings.Fields(body)
		if len(f) != 2 {
			return Command{}, fmt.Errorf("%w: %q needs two values", ErrMalformedCommand, line)
		}
		dx, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrMalformedCommand, line, err)
		}
		dy, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrMalformedCommand, line, err)
		}
		return Command{Kind: CommandMouse, DX: dx, DY: dy}, nil
	case 'F', 'R':
		v, err := strconv.ParseFloat(strings.TrimSpace(body), 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrMalformedCommand, line, err)
		}
		kind := CommandForward
		if line[0] == 'R' {
			kind = CommandRoll
		}
		return Command{Kind: kind, Amount: v}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q", ErrMalformedCommand, line[:1])
}
