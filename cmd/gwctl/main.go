// Command gwctl inspects and edits the ghostwriter store from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/kv"
	"github.com/debemdeboas/ghostwriter/internal/logger"
	"github.com/debemdeboas/ghostwriter/internal/store"
)

// opener returns a ready store for the given config file.
type opener func(configPath string) (*store.Store, *time.Location, func() error, error)

type app struct {
	open       opener
	configPath string
	out        io.Writer

	store    *store.Store
	location *time.Location
	close    func() error
}

func main() {
	if err := newRootCmd(openStore, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(configPath string) (*store.Store, *time.Location, func() error, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).Level(zerolog.WarnLevel)
	kv.SetLogger(logger.Component(log, "kv"))

	loc, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid timezone %q: %w", cfg.Site.Timezone, err)
	}

	backend, closeFn, err := kv.Open(context.Background(), kv.OptionsFromConfig(cfg.Storage))
	if err != nil {
		return nil, nil, nil, err
	}
	st := store.New(backend, store.WithLogger(logger.Component(log, "store")))
	st.Init()
	return st, loc, closeFn, nil
}

func newRootCmd(open opener, out io.Writer) *cobra.Command {
	a := &app{open: open, out: out}

	root := &cobra.Command{
		Use:           "gwctl",
		Short:         "Manage ghostwriter drafts, personas and the voice profile",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			st, loc, closeFn, err := a.open(a.configPath)
			if err != nil {
				return fmt.Errorf("error opening store: %w", err)
			}
			a.store, a.location, a.close = st, loc, closeFn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.close != nil {
				return a.close()
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to the config file")

	root.AddCommand(a.draftsCmd(), a.personasCmd(), a.voiceCmd())
	return root
}

// readContent returns the text argument, or the contents of file when the
// argument is "-" or absent.
func readContent(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		return string(data), err
	case len(args) > 0 && args[0] != "-":
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	return string(data), err
}
