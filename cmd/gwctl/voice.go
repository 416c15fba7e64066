package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) voiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Show or replace the voice profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the voice profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.store.VoiceProfile()
			if p == nil {
				fmt.Fprintln(a.out, mutedStyle.Render("No voice profile yet."))
				return nil
			}
			fmt.Fprintln(a.out, *p)
			return nil
		},
	}

	var file string
	set := &cobra.Command{
		Use:   "set [profile|-]",
		Short: "Replace the voice profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := readContent(cmd, args, file)
			if err != nil {
				return err
			}
			profile = strings.TrimSpace(profile)
			if profile == "" {
				return fmt.Errorf("voice profile is empty; use clear to remove it")
			}
			a.store.SetVoiceProfile(&profile)
			fmt.Fprintln(a.out, okStyle.Render("Voice profile saved"))
			return nil
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", "read the profile from file")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the voice profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.SetVoiceProfile(nil)
			fmt.Fprintln(a.out, okStyle.Render("Voice profile cleared"))
			return nil
		},
	}

	cmd.AddCommand(show, set, clearCmd)
	return cmd
}
