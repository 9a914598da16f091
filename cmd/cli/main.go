package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/OsuBridge/internal/config"
	"github.com/himanishpuri/OsuBridge/pkg/logger"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/catalog"
)

// app carries what every subcommand needs. Flags write straight into cfg.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	jsonOut bool
}

func (a *app) createService() (catalog.Service, error) {
	return catalog.NewService(
		catalog.WithDBPath(a.cfg.DBPath),
		catalog.WithConcurrency(a.cfg.ImportWorkers),
		catalog.WithLogger(a.log),
	)
}

func newRootCommand(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "osubridge",
		Short: "Inspect, edit and catalog osu! beatmaps",
		Long: TitleStyle.Render("osubridge") + SubtitleStyle.Render(" - osu! beatmap toolkit") + `

Reads and edits .osu files, keeps a local sqlite catalog of imported
maps and queries the osu! web API.

` + SubtitleStyle.Render("Examples:") + `
  osubridge info map.osu                 Show a beatmap overview
  osubridge set map.osu audioLeadIn 500  Edit a field and print the result
  osubridge import ~/osu/Songs           Import every map below a folder
  osubridge list --tag stream            List catalogued maps by tag`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := logger.DefaultConfig()
			cfg.Level = logger.ParseLevel(a.cfg.LogLevel)
			cfg.Output = cmd.ErrOrStderr()
			a.log = logger.New(cfg)
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.DBPath, "db", cfg.DBPath, "path to the catalog database")
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newParseCommand(a),
		newInfoCommand(a),
		newGetCommand(a),
		newSetCommand(a),
		newFieldsCommand(a),
		newImportCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newTagCommand(a),
		newDeleteCommand(a),
		newAPICommand(a),
	)
	return root
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	if err := newRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
