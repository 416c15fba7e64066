package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/ghostwriter/internal/model"
	"github.com/debemdeboas/ghostwriter/internal/util"
)

func (a *app) personasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "Manage audience personas",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List personas in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			personas := a.store.Personas()
			if len(personas) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No personas."))
				return nil
			}
			rows := make([][]string, 0, len(personas))
			for _, p := range personas {
				rows = append(rows, []string{string(p.ID), p.Name, util.Excerpt(p.Description, 60)})
			}
			fmt.Fprintln(a.out, renderTable([]string{"ID", "Name", "Description"}, rows))
			return nil
		},
	}

	var name, description string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(name) < 3 {
				return fmt.Errorf("name must be at least 3 characters")
			}
			if utf8.RuneCountInString(description) < 20 {
				return fmt.Errorf("description must be at least 20 characters")
			}
			p := a.store.AddPersona(model.NewPersona{Name: name, Description: description})
			fmt.Fprintln(a.out, okStyle.Render("Added persona "+string(p.ID)))
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "persona name")
	add.Flags().StringVar(&description, "description", "", "who the persona is")
	add.MarkFlagRequired("name")
	add.MarkFlagRequired("description")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a persona",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.DeletePersona(model.PersonaID(args[0]))
			fmt.Fprintln(a.out, okStyle.Render("Deleted persona "+args[0]))
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
