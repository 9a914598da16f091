package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/osufile"
)

func newParseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.osu>",
		Short: "Parse a beatmap and print its full model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bm, err := osubridge.ParseFile(args[0])
			if err != nil {
				return err
			}
			m, err := bm.AsJSON()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
}

func newInfoCommand(a *app) *cobra.Command {
	var mods string

	cmd := &cobra.Command{
		Use:   "info <file.osu>",
		Short: "Show a beatmap overview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := osufile.ParseMods(mods)
			if err != nil {
				return err
			}
			bm, err := osubridge.ParseFile(args[0])
			if err != nil {
				return err
			}
			sum := bm.SummaryFor(m)
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().StringVar(&mods, "mods", "", "adjust difficulty for mods, e.g. HR or EZ")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file.osu> <field>",
		Short: "Print one field of a beatmap",
		Long:  "Print one field of a beatmap. Fields: " + strings.Join(osubridge.FieldNames(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bm, err := osubridge.ParseFile(args[0])
			if err != nil {
				return err
			}
			v, err := bm.Field(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	var output string
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "set <file.osu> <field> <value>",
		Short: "Change one field and write the beatmap out",
		Long: `Change one field and write the re-encoded beatmap to stdout, to --output,
or back to the input file with --in-place.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPlace && output != "" {
				return fmt.Errorf("--in-place and --output are mutually exclusive")
			}
			bm, err := osubridge.ParseFile(args[0])
			if err != nil {
				return err
			}
			if err := bm.SetField(args[1], args[2]); err != nil {
				return err
			}

			dest := output
			if inPlace {
				dest = args[0]
			}
			if dest == "" {
				_, err := bm.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := writeBeatmap(dest, bm); err != nil {
				return err
			}
			a.log.Infof("Wrote %s", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	return cmd
}

func newFieldsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields accepted by get and set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range osubridge.FieldNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// writeBeatmap renders bm before touching path so a rejected model never
// truncates the destination.
func writeBeatmap(path string, bm *osubridge.Beatmap) error {
	text, err := bm.Text()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func printSummary(w io.Writer, s osubridge.Summary) {
	fmt.Fprintln(w, TitleStyle.Render(s.DisplayName()))
	row := func(label string, format string, args ...any) {
		fmt.Fprintln(w, LabelStyle.Render(label)+fmt.Sprintf(format, args...))
	}
	row("Creator", "%s", s.Creator)
	row("Mode", "%s", s.Mode)
	row("Format", "v%d", s.Version)
	row("Audio", "%s (lead-in %dms)", s.AudioFilename, s.AudioLeadIn)
	if s.BeatmapID != 0 {
		row("Beatmap ID", "%d (set %d)", s.BeatmapID, s.BeatmapSetID)
	}
	row("Objects", "%d (max combo %d)", s.HitObjects, s.MaxCombo)
	row("Length", "%s", formatMs(int64(s.LengthMs)))
	if s.MinBPM == s.MaxBPM {
		row("BPM", "%g", s.MaxBPM)
	} else {
		row("BPM", "%g-%g", s.MinBPM, s.MaxBPM)
	}
	d := s.Difficulty
	row("Difficulty", "HP %g  CS %g  OD %g  AR %g (%s)", d.HPDrainRate, d.CircleSize, d.OverallDifficulty, d.ApproachRate, s.Mods)
	row("Hit windows", "300: %gms  100: %gms  50: %gms", s.Windows.Hit300, s.Windows.Hit100, s.Windows.Hit50)
	if len(s.Tags) > 0 {
		row("Tags", "%s", strings.Join(s.Tags, " "))
	}
}

func formatMs(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
