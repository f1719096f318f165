package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/winescan/internal/report"
	"github.com/ensigniasec/winescan/internal/scan"
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(renderHeader(m, width))
	b.WriteString("\n\n")
	b.WriteString(renderViewfinder(m))
	b.WriteString("\n\n")
	b.WriteString(renderStatus(m))
	b.WriteString("\n")
	b.WriteString(renderProgress(m, width))
	b.WriteString("\n")

	if m.state.Phase == scan.PhaseFound && m.state.Result != nil {
		b.WriteString("\n")
		b.WriteString(renderResult(m, width))
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(redColor)).Render(m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m))
	b.WriteString("\n")
	return b.String()
}

// contentWidth sizes the progress bar and card to the window, within bounds.
func (m Model) contentWidth() int {
	if m.width <= 0 {
		return contentMaxWidth
	}
	return max(contentMinWidth, min(contentMaxWidth, m.width-2))
}

// renderHeader shows the title on the left and the flash badge on the right.
func renderHeader(m Model, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(wineColor)).Render("🍷 winescan")
	badge := flashBadge(m.state.FlashEnabled)
	pad := width - lipgloss.Width(title) - lipgloss.Width(badge)
	if pad < 1 {
		pad = 1
	}
	return title + strings.Repeat(" ", pad) + badge
}

func flashBadge(on bool) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if on {
		return style.Foreground(lipgloss.Color(yellowColor)).Render("⚡ FLASH ON")
	}
	return style.Foreground(lipgloss.Color(dimColor)).Render("FLASH OFF")
}

// renderViewfinder draws the camera frame. The centre shows a crosshair while
// idle, the spinner while a run is active and a check mark once found.
func renderViewfinder(m Model) string {
	var center string
	color := grayColor
	switch m.state.Phase {
	case scan.PhaseIdle:
		center = "+"
	case scan.PhaseScanning, scan.PhaseAnalyzing:
		center = m.spinner.View()
		color = wineColor
	case scan.PhaseDetected:
		center = "◎"
		color = yellowColor
	case scan.PhaseFound:
		center = "✓"
		color = greenColor
	}
	if m.state.FlashEnabled && m.state.Phase != scan.PhaseFound {
		color = yellowColor
	}

	inner := lipgloss.Place(viewfinderWidth, viewfinderHeight, lipgloss.Center, lipgloss.Center, center)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Render(inner)
}

func renderStatus(m Model) string {
	style := lipgloss.NewStyle().Bold(true)
	switch m.state.Phase {
	case scan.PhaseFound:
		style = style.Foreground(lipgloss.Color(greenColor))
	case scan.PhaseIdle:
		style = style.Foreground(lipgloss.Color(grayColor))
	default:
		style = style.Foreground(lipgloss.Color(wineColor))
	}
	return style.Render(m.state.StatusText)
}

// renderProgress shows the bar only while a run is under way or finished.
func renderProgress(m Model, width int) string {
	if m.state.Phase == scan.PhaseIdle {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor)).Render("Press space to scan a label")
	}
	p := m.progress
	p.Width = max(1, width-5) //nolint:mnd // room for " 100%"
	pct := fmt.Sprintf(" %3d%%", m.state.Progress)
	return p.ViewAs(m.state.Percent()) + pct
}

func renderResult(m Model, width int) string {
	wine := m.state.Result
	var lines []string
	lines = append(lines,
		lipgloss.NewStyle().Bold(true).Render(wine.Label()),
		lipgloss.NewStyle().Foreground(lipgloss.Color(grayColor)).Render(wine.Winery+" · "+wine.Region+", "+wine.Country),
		"",
		fmt.Sprintf("Style  %s", wine.Type),
	)
	if wine.Varietal != "" {
		lines = append(lines, fmt.Sprintf("Grapes %s", wine.Varietal))
	}
	lines = append(lines,
		fmt.Sprintf("Rating %s", report.Stars(wine.Rating)),
		fmt.Sprintf("Price  $%.2f", wine.Price),
	)
	if m.favorite {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color(redColor)).Render("❤ favorite"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(wineColor)).
		Padding(0, 1).
		Width(max(1, width-2)).
		Render(strings.Join(lines, "\n"))
}

func renderFooter(m Model) string {
	var b strings.Builder
	b.WriteString(m.help.View(m.keys))
	if m.state.Phase == scan.PhaseFound && !m.help.ShowAll {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(grayColor)).Render(" • a favorite"))
	}
	if m.scans > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor)).Render(fmt.Sprintf("\n%d found this session", m.scans)))
	}
	return b.String()
}
