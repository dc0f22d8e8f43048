// Package ui holds the terminal styles and small print helpers shared by the
// sadb commands.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Out is where the print helpers write.
var Out io.Writer = os.Stdout

// Renderer is bound to stdout. The color profile is set explicitly since
// lipgloss v1 detects TrueColor without always applying it. NO_COLOR forces
// plain ASCII output.
var Renderer = newRenderer()

func newRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(os.Stdout)
	if os.Getenv("NO_COLOR") != "" {
		r.SetColorProfile(termenv.Ascii)
		return r
	}
	r.SetColorProfile(termenv.TrueColor)
	return r
}

var (
	Green  = Renderer.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	Cyan   = Renderer.NewStyle().Foreground(lipgloss.Color("14"))
	Red    = Renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	Yellow = Renderer.NewStyle().Foreground(lipgloss.Color("11"))
	White  = Renderer.NewStyle().Foreground(lipgloss.Color("15"))
	Dim    = Renderer.NewStyle().Foreground(lipgloss.Color("245"))
)

// Success prints a green check mark and a formatted message.
func Success(format string, args ...any) {
	fmt.Fprintln(Out, Green.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Warn prints a yellow "!" and a formatted message.
func Warn(format string, args ...any) {
	fmt.Fprintln(Out, Yellow.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Field prints a label padded to a fixed column followed by its value.
func Field(label, value string) {
	fmt.Fprintln(Out, Cyan.Render(fmt.Sprintf("%-14s", label+":"))+White.Render(value))
}
