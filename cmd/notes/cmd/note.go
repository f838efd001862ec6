package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"noteminder/internal/service"
	"noteminder/models"
)

var (
	noteTitle    string
	noteContent  string
	noteAt       string
	noteCategory string
	noteJSON     bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage your notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note with a reminder",
	Example: `  notes note add --title "Dentist" --at "2025-03-01 09:30" --category Personal
  notes note add   # prompts for every field`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		in := service.NoteInput{Title: noteTitle, Content: noteContent, ReminderTime: noteAt, Category: noteCategory}
		if in.Title, err = valueOrPrompt(out, in.Title, "Title"); err != nil {
			return err
		}
		if !cmd.Flags().Changed("content") {
			if in.Content, err = promptLine(out, "Content", ""); err != nil {
				return err
			}
		}
		if in.ReminderTime, err = valueOrPrompt(out, in.ReminderTime, "Reminder (YYYY-MM-DD HH:MM)"); err != nil {
			return err
		}

		n, err := application.Service.Create(cmd.Context(), u.ID, in)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, success("Note #%d saved, reminder at %s.", n.ID, n.ReminderTime))
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your notes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		notes, err := application.Service.List(cmd.Context(), u.ID)
		if err != nil {
			return err
		}
		if noteJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if notes == nil {
				notes = []models.Note{}
			}
			return enc.Encode(notes)
		}
		renderNotes(cmd.OutOrStdout(), notes)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit one of your notes",
	Long: `Edit one of your notes. Fields not given as flags keep their value.
A reminder that already fired stays fired, even when its time changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		current, err := application.Service.Get(cmd.Context(), u.ID, id)
		if err != nil {
			return err
		}

		in := service.NoteInput{Title: current.Title, Content: current.Content, ReminderTime: current.ReminderTime}
		if current.CategoryName != nil {
			in.Category = *current.CategoryName
		}
		flags := cmd.Flags()
		edited := false
		for _, name := range []string{"title", "content", "at", "category"} {
			edited = edited || flags.Changed(name)
		}
		if flags.Changed("title") {
			in.Title = noteTitle
		}
		if flags.Changed("content") {
			in.Content = noteContent
		}
		if flags.Changed("at") {
			in.ReminderTime = noteAt
		}
		if flags.Changed("category") {
			in.Category = noteCategory
		}
		if !edited {
			out := cmd.OutOrStdout()
			if in.Title, err = promptLine(out, "Title", in.Title); err != nil {
				return err
			}
			if in.Content, err = promptLine(out, "Content", in.Content); err != nil {
				return err
			}
			if in.ReminderTime, err = promptLine(out, "Reminder (YYYY-MM-DD HH:MM)", in.ReminderTime); err != nil {
				return err
			}
			if in.Category, err = promptLine(out, "Category", in.Category); err != nil {
				return err
			}
		}

		n, err := application.Service.Update(cmd.Context(), u.ID, id, in)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), success("Note #%d updated.", n.ID))
		return nil
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete one of your notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		if err := application.Service.Delete(cmd.Context(), u.ID, id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), success("Note #%d deleted.", id))
		return nil
	},
}

func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func init() {
	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
		c.Flags().StringVarP(&noteContent, "content", "c", "", "note body")
		c.Flags().StringVar(&noteAt, "at", "", "reminder time, YYYY-MM-DD HH:MM local time")
		c.Flags().StringVar(&noteCategory, "category", "", "category name (see \"notes category list\")")
	}
	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "print notes as JSON")

	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteEditCmd, noteDeleteCmd)
}
