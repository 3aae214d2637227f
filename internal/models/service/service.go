package service

import (
	"strings"

	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
)

type Service string

const (
	TurnOn  Service = "turn_on"
	TurnOff Service = "turn_off"
	Toggle  Service = "toggle"

	SetTemperature   Service = "set_temperature"
	SetCoverPosition Service = "set_cover_position"
	OpenCover        Service = "open_cover"
	CloseCover       Service = "close_cover"
	StopCover        Service = "stop_cover"
	MediaPlayPause   Service = "media_play_pause"
	VolumeSet        Service = "volume_set"
)

func (s Service) String() string {
	return string(s)
}

// On joins the service with a domain to the hub's "domain.service" notation.
func (s Service) On(dom domain.Domain) string {
	return dom.String() + "." + s.String()
}

func (s Service) FmtString() string {
	serviceName := s.String()

	if nameParts := strings.Split(serviceName, "_"); len(nameParts) > 1 {
		serviceName = nameParts[0] + style.LightGray.Render("_") + strings.Join(nameParts[1:], "_")
	}

	return lipgloss.NewStyle().Italic(true).SetString(style.Gray(6).Render("…") + serviceName).String()
}
