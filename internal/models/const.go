package models

import (
	"os"

	"github.com/benleb/autoscope/internal/icons"
	"github.com/charmbracelet/log"
)

const (
	AppName = "AutoScope"
	AppIcon = icons.Scope
)

// Printer is the root logger. It is replaced by the root command once the
// log level flags are parsed.
var Printer = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	TimeFormat:      " " + "15:04:05",
	Level:           log.WarnLevel,
})
