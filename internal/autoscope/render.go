package autoscope

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/benleb/autoscope/internal/capability"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
)

var (
	list = lipgloss.NewStyle().
		MarginLeft(0).
		MarginRight(0).
		PaddingTop(1)

	listHeader = lipgloss.NewStyle().
			MarginLeft(1).
			MarginRight(2).
			Width(10).
			Align(lipgloss.Right).
			AlignVertical(lipgloss.Top).
			Foreground(lipgloss.Color("#333555")).
			Render

	listItem = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#ccc"}).
			Render

	listItemEditable = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Dark: "#eee", Light: "#111"}).
				Render
)

// ColorFromString returns a deterministic color for a name, e.g. a user.
func ColorFromString(seedPhrase string) lipgloss.Color {
	seed := int64(17)

	for _, r := range seedPhrase {
		seed *= int64(r)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec

	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rng.Intn(256), rng.Intn(256), rng.Intn(256)))
}

// RenderList renders list items for the terminal.
func RenderList(user string, items []ListItem) string {
	userStyle := lipgloss.NewStyle().Foreground(ColorFromString(user)).Bold(true)

	out := strings.Builder{}
	out.WriteString(icons.Checklist + " ")
	out.WriteString(style.Bold(strconv.Itoa(len(items))))
	out.WriteString(" automations visible to ")
	out.WriteString(userStyle.Render(user))
	out.WriteString("\n")

	for _, item := range items {
		out.WriteString(renderItem(item))
	}

	return out.String()
}

func renderItem(item ListItem) string {
	status := icons.GreenTick.String()
	if !item.Enabled {
		status = style.Gray(8).Render(" off")
	}

	render := listItem
	editable := icons.Lock
	if item.CanEdit {
		render = listItemEditable
		editable = icons.Pen
	}

	title := render(item.Alias) + " " + style.LightGray.Render(item.ID) + " " + status + " " + editable
	if item.HasTemplates {
		title += " " + icons.Template
	}

	rows := []string{title}

	if item.Description != "" {
		rows = append(rows, listItem(item.Description))
	}

	targets := style.Gray(8).Render("-")
	if len(item.ActionEntities) > 0 {
		targets = strings.Join(item.ActionEntities, style.DarkerDivider.String())
	}

	rows = append(rows, listHeader(icons.Action)+listItem(string(item.Mode))+" "+style.DarkDivider.String()+" "+targets)

	return list.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"
}

// RenderCapabilities renders the capabilities of a device.
func RenderCapabilities(caps *Capabilities) string {
	rows := []string{
		style.Bold(caps.Device.FriendlyName()) + " " + style.LightGray.Render(caps.Device.EntityID) +
			" " + style.DarkDivider.String() + " " + style.HAStyle.Render(caps.Rule),
	}

	if caps.Excluded {
		rows = append(rows, listHeader(icons.Block)+listItem("excluded from automations"))
	}

	for _, trigger := range caps.Triggers {
		rows = append(rows, listHeader(icons.Trigger)+listItem(formatTrigger(trigger)))
	}

	for _, action := range caps.Actions {
		rows = append(rows, listHeader(icons.Action)+listItem(formatAction(action)))
	}

	return list.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"
}

func formatTrigger(spec capability.TriggerSpec) string {
	out := string(spec.Type)

	if spec.Attribute != "" {
		out += " " + style.Bold(spec.Attribute)
	}

	switch {
	case len(spec.Options) > 0:
		out += " " + strings.Join(spec.Options, "|")
	case len(spec.DirectionOptions) > 0:
		directions := make([]string, 0, len(spec.DirectionOptions))
		for _, direction := range spec.DirectionOptions {
			directions = append(directions, string(direction))
		}

		out += " " + strings.Join(directions, "|")
	case len(spec.Waypoints) > 0:
		out += " " + formatWaypoints(spec.Waypoints)
	}

	return out
}

func formatAction(spec capability.ActionSpec) string {
	name := string(spec.Action)
	if spec.Command != "" {
		name = string(spec.Command)
	}

	out := spec.Label + " " + style.LightGray.Render(name)

	switch spec.Kind {
	case capability.KindSlider:
		out += fmt.Sprintf(" %g…%g step %g", spec.Min, spec.Max, spec.Step)
	case capability.KindFixedPosition:
		out += " " + formatWaypoints(spec.Positions)
	case capability.KindCommand:
	}

	return out
}

func formatWaypoints(waypoints []capability.Waypoint) string {
	formatted := make([]string, 0, len(waypoints))
	for _, waypoint := range waypoints {
		formatted = append(formatted, fmt.Sprintf("%g %s", waypoint.Value, waypoint.Label))
	}

	return strings.Join(formatted, ", ")
}
