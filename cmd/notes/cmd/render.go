package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"noteminder/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(48)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func reminderState(n *models.Note) string {
	if n.Notified {
		return doneStyle.Render("notified")
	}
	return pendingStyle.Render("pending")
}

// renderNote draws one note as a card.
func renderNote(n *models.Note) string {
	category := "-"
	if n.CategoryName != nil {
		category = *n.CategoryName
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", n.ID, n.Title)))
	b.WriteString("\n")
	if n.Content != "" {
		b.WriteString(n.Content)
		b.WriteString("\n")
	}
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s | %s | ", n.ReminderTime, category)))
	b.WriteString(reminderState(n))
	return cardStyle.Render(b.String())
}

func renderNotes(w io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, warning("No notes yet. Add one with \"notes note add\"."))
		return
	}
	for i := range notes {
		fmt.Fprintln(w, renderNote(&notes[i]))
	}
}
