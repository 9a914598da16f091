package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/OsuBridge/pkg/models"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.osu|dir>...",
		Short: "Add beatmaps to the catalog",
		Long: `Add beatmaps to the catalog. Directories are searched recursively for
.osu files. Files already in the catalog (same contents) are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := cmd.Context()
			var results []models.ImportResult
			for _, path := range args {
				fi, err := os.Stat(path)
				if err != nil {
					return err
				}
				if fi.IsDir() {
					rs, err := svc.ImportDir(ctx, path)
					results = append(results, rs...)
					if err != nil {
						return err
					}
					continue
				}
				res, err := svc.Import(ctx, path)
				if err != nil {
					results = append(results, models.ImportResult{Path: path, Error: err.Error()})
					continue
				}
				results = append(results, *res)
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), results)
			}
			printImportResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func printImportResults(w io.Writer, results []models.ImportResult) {
	var added, skipped, failed int
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			fmt.Fprintf(w, "%s %s: %s\n", ErrorStyle.Render("failed "), r.Path, r.Error)
		case r.Skipped:
			skipped++
			fmt.Fprintf(w, "%s %s (%s)\n", WarningStyle.Render("skipped"), r.Path, r.ID)
		default:
			added++
			fmt.Fprintf(w, "%s %s (%s)\n", SuccessStyle.Render("added  "), r.Path, r.ID)
		}
	}
	fmt.Fprintf(w, "\n%d added, %d skipped, %d failed\n", added, skipped, failed)
}

func newListCommand(a *app) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued beatmaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			var entries []models.Entry
			if tag != "" {
				entries, err = svc.FindByTag(tag)
			} else {
				entries, err = svc.List()
			}
			if err != nil {
				return err
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("No beatmaps in the catalog."))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s - %s [%s]  %s\n",
					e.ID, e.Artist, e.Title, e.DifficultyName,
					SubtitleStyle.Render(fmt.Sprintf("%s, %s", e.Mode, formatMs(int64(e.LengthMs)))))
			}
			fmt.Fprintf(w, "\n%d beatmaps\n", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only list beatmaps with this tag")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	var osu bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalogued beatmap",
		Long:  "Show one catalogued beatmap. --osu prints the stored file re-encoded.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if osu {
				bm, err := svc.Load(args[0])
				if err != nil {
					return err
				}
				_, err = bm.WriteTo(cmd.OutOrStdout())
				return err
			}

			e, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), e)
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}
	cmd.Flags().BoolVar(&osu, "osu", false, "print the beatmap in .osu format")
	return cmd
}

func printEntry(w io.Writer, e *models.Entry) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s - %s [%s]", e.Artist, e.Title, e.DifficultyName)))
	row := func(label, value string) {
		fmt.Fprintln(w, LabelStyle.Render(label)+value)
	}
	row("ID", e.ID)
	row("Path", e.Path)
	row("Checksum", e.Checksum)
	row("Creator", e.Creator)
	row("Mode", e.Mode)
	row("Audio", fmt.Sprintf("%s (lead-in %dms)", e.AudioFilename, e.AudioLeadIn))
	if e.AudioMs > 0 {
		row("Audio length", formatMs(int64(e.AudioMs)))
	}
	row("Objects", fmt.Sprintf("%d over %s", e.HitObjects, formatMs(int64(e.LengthMs))))
	if len(e.Tags) > 0 {
		row("Tags", strings.Join(e.Tags, " "))
	}
	row("Imported", e.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func newTagCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag>...",
		Short: "Add tags to a catalogued beatmap",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Tag(args[0], args[1:]...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Tagged "+args[0]))
			return nil
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a beatmap from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}
