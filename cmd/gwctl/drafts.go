package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/ghostwriter/internal/model"
	"github.com/debemdeboas/ghostwriter/internal/util"
)

func (a *app) draftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List and edit saved drafts",
	}

	var scheduledOnly, unscheduledOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List drafts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts := a.store.Drafts()
			switch {
			case scheduledOnly:
				drafts = filterDrafts(drafts, func(d model.Draft) bool { return d.IsScheduled() })
			case unscheduledOnly:
				drafts = a.store.Unscheduled()
			}
			if len(drafts) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No drafts."))
				return nil
			}

			rows := make([][]string, 0, len(drafts))
			for _, d := range drafts {
				rows = append(rows, []string{
					string(d.ID),
					util.Excerpt(d.GetTitle(), 40),
					d.CreatedAt.In(a.location).Format("2006-01-02 15:04"),
					formatDay(d.ScheduledDate, a.location),
				})
			}
			fmt.Fprintln(a.out, renderTable([]string{"ID", "Title", "Created", "Scheduled"}, rows))
			return nil
		},
	}
	list.Flags().BoolVar(&scheduledOnly, "scheduled", false, "only scheduled drafts")
	list.Flags().BoolVar(&unscheduledOnly, "unscheduled", false, "only unscheduled drafts")
	list.MarkFlagsMutuallyExclusive("scheduled", "unscheduled")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a draft's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.draft(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, headerStyle.Render(d.GetTitle()))
			fmt.Fprintln(a.out, d.Content)
			return nil
		},
	}

	var topic, format, file string
	add := &cobra.Command{
		Use:   "add [content|-]",
		Short: "Save a new draft from an argument, a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args, file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("draft content is empty")
			}
			d := a.store.AddDraft(model.NewDraft{Topic: topic, Format: format, Content: content})
			fmt.Fprintln(a.out, okStyle.Render("Saved draft "+string(d.ID)))
			return nil
		},
	}
	add.Flags().StringVar(&topic, "topic", "", "draft topic")
	add.Flags().StringVar(&format, "format", "", "content format, e.g. \"Blog Post\"")
	add.Flags().StringVarP(&file, "file", "f", "", "read content from file")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a draft",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.DeleteDraft(model.DraftID(args[0]))
			fmt.Fprintln(a.out, okStyle.Render("Deleted draft "+args[0]))
			return nil
		},
	}

	schedule := &cobra.Command{
		Use:   "schedule <id> <YYYY-MM-DD>",
		Short: "Place a draft on the content calendar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.draft(args[0])
			if err != nil {
				return err
			}
			day, err := time.ParseInLocation("2006-01-02", args[1], a.location)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[1], err)
			}
			a.store.ScheduleDraft(d.ID, day)
			fmt.Fprintln(a.out, okStyle.Render(fmt.Sprintf("Scheduled %s for %s", d.ID, args[1])))
			return nil
		},
	}

	unschedule := &cobra.Command{
		Use:   "unschedule <id>",
		Short: "Remove a draft from the content calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.draft(args[0])
			if err != nil {
				return err
			}
			a.store.UnscheduleDraft(d.ID)
			fmt.Fprintln(a.out, okStyle.Render("Unscheduled "+string(d.ID)))
			return nil
		},
	}

	cmd.AddCommand(list, show, add, del, schedule, unschedule)
	return cmd
}

func (a *app) draft(id string) (model.Draft, error) {
	d, ok := a.store.Draft(model.DraftID(id))
	if !ok {
		return model.Draft{}, fmt.Errorf("draft %q not found", id)
	}
	return d, nil
}

func filterDrafts(drafts []model.Draft, keep func(model.Draft) bool) []model.Draft {
	out := drafts[:0]
	for _, d := range drafts {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
