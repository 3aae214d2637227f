package icons

import "github.com/charmbracelet/lipgloss"

const (
	// app.
	Scope = "🔭"

	// automation related messages.
	Compile  = "🛠️"
	Trigger  = "🫨 "
	Action   = "🎬"
	Template = "🧩"
	Calendar = "📅"

	// scope related messages.
	Block = "🚫"
	Key   = "🔑"
	Lock  = "🔒"
	Pen   = "✏️"

	// connection related messages.
	ConnectionChain = "🔗"
	Glasses         = "👓"

	// other messages.
	Cross     = "✖️"
	Tick      = "✔"
	Checklist = "📋"

	Broom     = "🧹"
	Home      = "🏠"
	Call      = "📞"
	Stopwatch = "⏱️"
	Watchdog  = "🐕"
	Shrug     = "🤷‍♀️"

	// go stylecheck linter ST1018.
	Detective = "🕵️‍"
)

var (
	GreenTick = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).SetString(" " + Tick)
	RedCross  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString(Cross)
)
