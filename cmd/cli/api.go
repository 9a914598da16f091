package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge/api"
	"github.com/himanishpuri/OsuBridge/pkg/utils"
)

func newAPICommand(a *app) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Query the osu! web API (needs OSU_API_KEY)",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "api-url", api.DefaultBaseURL, "osu! API base URL")

	client := func() (*api.Client, error) {
		return api.NewClient(a.cfg.APIKey, api.WithBaseURL(baseURL))
	}

	cmd.AddCommand(newAPIBeatmapCommand(a, client), newAPIUserCommand(a, client))
	return cmd
}

func newAPIBeatmapCommand(a *app, client func() (*api.Client, error)) *cobra.Command {
	var mode int

	cmd := &cobra.Command{
		Use:   "beatmap <id|url>",
		Short: "Look up a beatmap or beatmap set",
		Long: `Look up a beatmap or beatmap set by ID or by osu.ppy.sh link.
A bare number is taken as a beatmap ID; set links list every difficulty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := beatmapQuery(args[0])
			if err != nil {
				return err
			}
			if mode >= 0 {
				q.Mode = api.Mode(mode)
				q.Converted = true
			}

			c, err := client()
			if err != nil {
				return err
			}
			maps, err := c.GetBeatmaps(cmd.Context(), q)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), maps)
			}
			w := cmd.OutOrStdout()
			if len(maps) == 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("No beatmaps found."))
				return nil
			}
			for _, m := range maps {
				fmt.Fprintf(w, "%s  %s - %s [%s]  %s\n", m.BeatmapID, m.Artist, m.Title, m.Version,
					SubtitleStyle.Render(fmt.Sprintf("%s bpm, %s stars", m.BPM, m.DifficultyRating)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&mode, "mode", "m", -1, "game mode (0 osu, 1 taiko, 2 catch, 3 mania)")
	return cmd
}

// beatmapQuery accepts a numeric beatmap ID or an osu.ppy.sh link.
func beatmapQuery(arg string) (api.BeatmapsQuery, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return api.BeatmapsQuery{BeatmapID: id}, nil
	}
	ref, err := utils.ExtractBeatmapRef(arg)
	if err != nil {
		return api.BeatmapsQuery{}, err
	}
	if ref.BeatmapID != 0 {
		return api.BeatmapsQuery{BeatmapID: ref.BeatmapID}, nil
	}
	return api.BeatmapsQuery{SetID: ref.BeatmapSetID}, nil
}

func newAPIUserCommand(a *app, client func() (*api.Client, error)) *cobra.Command {
	var mode int

	cmd := &cobra.Command{
		Use:   "user <name|id>",
		Short: "Look up a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			u, err := c.GetUser(cmd.Context(), api.UserQuery{User: args[0], Mode: api.Mode(mode)})
			if err != nil {
				return err
			}

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), u)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, TitleStyle.Render(u.Username))
			fmt.Fprintln(w, LabelStyle.Render("ID")+u.UserID)
			fmt.Fprintln(w, LabelStyle.Render("Country")+u.Country)
			fmt.Fprintln(w, LabelStyle.Render("Rank")+"#"+u.PPRank)
			fmt.Fprintln(w, LabelStyle.Render("PP")+u.PPRaw)
			fmt.Fprintln(w, LabelStyle.Render("Accuracy")+u.Accuracy)
			fmt.Fprintln(w, LabelStyle.Render("Play count")+u.Playcount)
			return nil
		},
	}
	cmd.Flags().IntVarP(&mode, "mode", "m", 0, "game mode (0 osu, 1 taiko, 2 catch, 3 mania)")
	return cmd
}
