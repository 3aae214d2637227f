package automation

import (
	"strings"

	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/models/service"
	"golang.org/x/exp/slices"
)

// Command is the id of an allow-listed device command, e.g. "blind/set_position".
type Command string

const (
	BlindOpen        Command = "blind/open"
	BlindClose       Command = "blind/close"
	BlindStop        Command = "blind/stop"
	BlindSetPosition Command = "blind/set_position"
	MediaPlayPause   Command = "media/play_pause"
	MediaVolumeSet   Command = "media/volume_set"
)

// ValueKind describes the parameter a device command takes.
type ValueKind int

const (
	NoValue ValueKind = iota
	NumberValue
)

// CommandSpec maps a device command to the concrete service call it compiles to.
type CommandSpec struct {
	Domain  domain.Domain
	Service service.Service

	// Value is the kind of parameter the command takes.
	Value ValueKind

	// Param is the service data key the value is sent as.
	Param string

	// Min and Max bound the user-facing value, the hub receives it divided by Divisor.
	Min, Max float64
	Divisor  float64
}

var deviceCommands = map[Command]CommandSpec{
	BlindOpen:  {Domain: domain.Cover, Service: service.OpenCover},
	BlindClose: {Domain: domain.Cover, Service: service.CloseCover},
	BlindStop:  {Domain: domain.Cover, Service: service.StopCover},
	BlindSetPosition: {
		Domain: domain.Cover, Service: service.SetCoverPosition,
		Value: NumberValue, Param: "position", Min: 0, Max: 100, Divisor: 1,
	},
	MediaPlayPause: {Domain: domain.MediaPlayer, Service: service.MediaPlayPause},
	MediaVolumeSet: {
		Domain: domain.MediaPlayer, Service: service.VolumeSet,
		Value: NumberValue, Param: "volume_level", Min: 0, Max: 100, Divisor: 100,
	},
}

// LookupCommand returns the spec of an allow-listed command.
func LookupCommand(cmd Command) (CommandSpec, bool) {
	spec, ok := deviceCommands[cmd]

	return spec, ok
}

// Commands returns the allow-list, sorted.
func Commands() []Command {
	commands := make([]Command, 0, len(deviceCommands))
	for cmd := range deviceCommands {
		commands = append(commands, cmd)
	}

	slices.SortFunc(commands, func(a, b Command) int { return strings.Compare(string(a), string(b)) })

	return commands
}
