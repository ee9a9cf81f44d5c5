package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Output receives every console line. stdout is reserved for the report.
var Output io.Writer = color.Error

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	blue   = color.New(color.FgBlue, color.Bold)
	gray   = color.New(color.FgWhite)
	logo   = color.New(color.FgCyan, color.Bold)
)

func line(c *color.Color, tag, format string, a ...interface{}) {
	fmt.Fprintf(Output, "%s %s\n", c.Sprint(tag), fmt.Sprintf(format, a...))
}

func Info(format string, a ...interface{}) {
	line(cyan, "[INFO]", format, a...)
}

func Success(format string, a ...interface{}) {
	line(green, "[+]", format, a...)
}

func Error(format string, a ...interface{}) {
	line(red, "[-]", format, a...)
}

func Warning(format string, a ...interface{}) {
	line(yellow, "[!]", format, a...)
}

func Section(title string) {
	fmt.Fprintf(Output, "\n%s\n", blue.Sprintf("=== %s ===", title))
}

func Banner(version string) {
	logo.Fprintln(Output, `
       _     _                 _
      (_)___| |__  _   _ _ __ | |_
      | / __| '_ \| | | | '_ \| __|
      | \__ \ | | | |_| | | | | |_
     _/ |___/_| |_|\__,_|_| |_|\__|
    |__/`)
	fmt.Fprintf(Output, "    %s - %s\n", yellow.Sprint("JSHUNT"), green.Sprint("endpoints and secrets from JavaScript, recursively"))
	gray.Fprintf(Output, "    Version: %s\n\n", version)
}
