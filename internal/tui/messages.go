package tui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "ℹ"
)

func printStatus(w io.Writer, symbol string, attr color.Attribute, format string, args ...any) {
	c := color.New(attr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), fmt.Sprintf(format, args...))
}

// Success prints a green check line.
func Success(w io.Writer, format string, args ...any) {
	printStatus(w, SymbolSuccess, color.FgGreen, format, args...)
}

// Error prints a red cross line.
func Error(w io.Writer, format string, args ...any) {
	printStatus(w, SymbolError, color.FgRed, format, args...)
}

// Warning prints a yellow exclamation line.
func Warning(w io.Writer, format string, args ...any) {
	printStatus(w, SymbolWarning, color.FgYellow, format, args...)
}

// Info prints a blue information line.
func Info(w io.Writer, format string, args ...any) {
	printStatus(w, SymbolInfo, color.FgBlue, format, args...)
}

// Detail prints an indented follow-up line under a status line.
func Detail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// Heading prints a bold line.
func Heading(w io.Writer, text string) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(text))
}
