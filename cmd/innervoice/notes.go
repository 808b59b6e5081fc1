package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/journal"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

var (
	contentFlag   string
	jsonOutput    bool
	profileName   string
	profileAge    int
	profileMode   string
	interestsFlag string
	traitsFlag    string
	limitFlag     int
	offsetFlag    int
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Write and browse journal notes",
	Long:  `Create, list, update, delete and search notes. New and edited notes are analyzed before they are saved.`,
}

var createNoteCmd = &cobra.Command{
	Use:   "create [content]",
	Short: "Write a new note",
	Long:  `Write a new note. The content comes from --content or the positional arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := noteContent(args)
		if content == "" {
			return errors.New("note content is required")
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		note, err := a.svc.CreateNote(cmd.Context(), content, profileFromFlags())
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return printNote(note, true)
	},
}

var getNoteCmd = &cobra.Command{
	Use:   "get [note-id]",
	Short: "Show a note and its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		note, err := a.svc.GetNote(cmd.Context(), id)
		if errors.Is(err, journal.ErrNoteNotFound) {
			return fmt.Errorf("note not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		return printNote(note, true)
	},
}

var listNotesCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.svc.ListNotes(cmd.Context(), limitFlag, offsetFlag)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		return printNotes(list)
	},
}

var updateNoteCmd = &cobra.Command{
	Use:   "update [note-id] [content]",
	Short: "Rewrite a note and analyze it again",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		content := noteContent(args[1:])
		if content == "" {
			return errors.New("note content is required")
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		note, err := a.svc.UpdateNote(cmd.Context(), id, content, profileFromFlags())
		if errors.Is(err, journal.ErrNoteNotFound) {
			return fmt.Errorf("note not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		return printNote(note, false)
	},
}

var deleteNoteCmd = &cobra.Command{
	Use:   "delete [note-id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.svc.DeleteNote(cmd.Context(), id)
		if errors.Is(err, journal.ErrNoteNotFound) {
			return fmt.Errorf("note not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Printf("Note %s deleted.\n", id)
		return nil
	},
}

var relatedNotesCmd = &cobra.Command{
	Use:   "related [emotion]",
	Short: "List recent notes tagged with an emotion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exclude := uuid.Nil
		if s, _ := cmd.Flags().GetString("exclude"); s != "" {
			id, err := parseNoteID(s)
			if err != nil {
				return err
			}
			exclude = id
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.svc.FindRelated(cmd.Context(), args[0], exclude)
		if err != nil {
			return fmt.Errorf("failed to find related notes: %w", err)
		}
		return printNotes(list)
	},
}

var searchNotesCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes by text, emotion and date",
	Long: `Search notes. The query matches note content. --emotions keeps notes tagged with
any of the given emotions. --from and --to take YYYY-MM-DD or RFC 3339; --to is exclusive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := notes.Filter{Query: strings.Join(args, " "), Limit: limitFlag, Offset: offsetFlag}
		emotions, _ := cmd.Flags().GetString("emotions")
		f.Emotions = splitList(emotions)

		var err error
		from, _ := cmd.Flags().GetString("from")
		if f.From, err = parseDate(from); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, _ := cmd.Flags().GetString("to")
		if f.To, err = parseDate(to); err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}

		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.svc.SearchNotes(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("failed to search notes: %w", err)
		}
		return printNotes(list)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize moods and emotions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.svc.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		if jsonOutput {
			return printJSON(stats)
		}

		fmt.Printf("Total notes:          %d\n", stats.TotalNotes)
		fmt.Printf("Last 7 days:          %d\n", stats.NotesLast7Days)
		fmt.Printf("Weekly average:       %.1f\n", stats.WeeklyAverage)
		fmt.Printf("Average mood:         %.1f/5\n", stats.AverageMoodScore)
		fmt.Printf("Streak:               %d days\n", stats.StreakDays)
		if stats.MostCommonEmotion != "" {
			fmt.Printf("Most common emotion:  %s\n", stats.MostCommonEmotion)
		}
		fmt.Printf("Weekly activity:      %v\n", stats.WeeklyActivity)
		for _, tc := range stats.Tags {
			fmt.Printf("  %-12s %d\n", tc.Tag, tc.Notes)
		}
		return nil
	},
}

func initNotesCmd() {
	notesCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	for _, c := range []*cobra.Command{createNoteCmd, updateNoteCmd} {
		c.Flags().StringVarP(&contentFlag, "content", "c", "", "Note content")
		c.Flags().StringVar(&profileName, "name", "", "Your name, used to address you")
		c.Flags().IntVar(&profileAge, "age", 0, "Your age")
		c.Flags().StringVar(&profileMode, "mode", string(analysis.ModeFriend), "Reply style: therapy, mentor, friend or humorous")
		c.Flags().StringVar(&interestsFlag, "interests", "", "Comma-separated interests")
		c.Flags().StringVar(&traitsFlag, "traits", "", "Comma-separated personality traits")
	}

	for _, c := range []*cobra.Command{listNotesCmd, searchNotesCmd} {
		c.Flags().IntVar(&limitFlag, "limit", notes.DefaultListLimit, "Maximum number of notes to return")
		c.Flags().IntVar(&offsetFlag, "offset", 0, "Number of notes to skip")
	}

	relatedNotesCmd.Flags().String("exclude", "", "Note ID to leave out of the results")

	searchNotesCmd.Flags().String("emotions", "", "Comma-separated emotions (any match)")
	searchNotesCmd.Flags().String("from", "", "Only notes created at or after this date")
	searchNotesCmd.Flags().String("to", "", "Only notes created before this date")

	notesCmd.AddCommand(
		createNoteCmd,
		getNoteCmd,
		listNotesCmd,
		updateNoteCmd,
		deleteNoteCmd,
		relatedNotesCmd,
		searchNotesCmd,
		statsCmd,
	)
}

func noteContent(args []string) string {
	if contentFlag != "" {
		return contentFlag
	}
	return strings.TrimSpace(strings.Join(args, " "))
}

func profileFromFlags() *analysis.UserProfile {
	return &analysis.UserProfile{
		Name:              profileName,
		Age:               profileAge,
		Mode:              analysis.ParseMode(profileMode),
		Interests:         splitList(interestsFlag),
		PersonalityTraits: splitList(traitsFlag),
	}
}

func parseNoteID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid note ID: %w", err)
	}
	return id, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printNote(n notes.Note, withExpansion bool) error {
	if jsonOutput {
		return printJSON(n)
	}

	fmt.Println("Note Details:")
	fmt.Printf("ID:             %s\n", n.ID)
	if n.EmotionalTone != "" {
		fmt.Printf("Emotional Tone: %s\n", n.EmotionalTone)
	}
	if len(n.Tags) > 0 {
		fmt.Printf("Emotions:       %s\n", strings.Join(n.Tags, ", "))
	}
	if n.AIAnalysis != nil {
		fmt.Printf("Mood:           %s (%d/5)\n", analysis.MoodEmoji(n.AIAnalysis.MoodScore), n.AIAnalysis.MoodScore)
	}
	fmt.Printf("Created At:     %s\n", n.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated At:     %s\n", n.UpdatedAt.Format(time.RFC3339))
	fmt.Println("\nContent:")
	fmt.Println("------------------------------------------------------------")
	fmt.Println(n.Content)
	fmt.Println("------------------------------------------------------------")

	if n.AIAnalysis != nil {
		fmt.Printf("\n%s\n", n.AIAnalysis.Response)
		fmt.Printf("\n\"%s\"\n", n.AIAnalysis.Motivation)
	}
	if withExpansion && n.AIExpansion != "" {
		fmt.Printf("\n%s\n", n.AIExpansion)
	}
	return nil
}

func printNotes(list []notes.Note) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	for _, n := range list {
		tags := "none"
		if len(n.Tags) > 0 {
			tags = strings.Join(n.Tags, ", ")
		}
		fmt.Printf("%s  %s  [%s]\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), tags)
		fmt.Printf("    %s\n", analysis.Preview(n.Content))
	}
	return nil
}
