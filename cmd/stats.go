package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Print a user's study statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		user, err := a.svc.Users.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		s, err := a.svc.Stats.Overall(ctx, userID)
		if err != nil {
			return err
		}
		months, err := a.svc.Stats.Monthly(ctx, userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Statistics for %s\n\n", user.Name)
		fmt.Fprintf(out, "Words:          %d (%d known, %d to learn)\n", s.TotalWords, s.KnownWords, s.UnknownWords)
		fmt.Fprintf(out, "Mastery:        %d%%\n", s.MasteryRate)
		fmt.Fprintf(out, "Study time:     %s\n", (time.Duration(s.TotalStudyTimeMs) * time.Millisecond).Round(time.Second))
		fmt.Fprintf(out, "Study days:     %d\n", s.StudyDays)
		fmt.Fprintf(out, "Streak:         %d days (longest %d)\n", s.CurrentStreak, s.LongestStreak)
		fmt.Fprintf(out, "Words per day:  %.1f\n\n", s.AverageWordsPerDay)

		for _, m := range months {
			fmt.Fprintf(out, "%s  learned %4d  mastered %4d\n", m.Month, m.Learned, m.Mastered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
