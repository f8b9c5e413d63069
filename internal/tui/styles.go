// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	blue  = lipgloss.Color("#2563eb")
	red   = lipgloss.Color("#ef4444")
	green = lipgloss.Color("#16a34a")
	gray  = lipgloss.Color("#6b7280")

	brandStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(blue).Padding(0, 1)
	navStyle       = lipgloss.NewStyle().Foreground(gray).Padding(0, 1)
	navActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(blue).Padding(0, 1).Underline(true)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(blue).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(gray)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	successStyle = lipgloss.NewStyle().Foreground(green)
	focusStyle   = lipgloss.NewStyle().Foreground(blue).Bold(true)
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(blue).Padding(0, 2)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(gray).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Reverse(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(1, 3)
	toastStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	bodyStyle  = lipgloss.NewStyle().Padding(1, 2)
)
