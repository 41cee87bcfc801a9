package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/seed"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo users, a group and two expenses",
	Long: `Create the demo fixture: users Alice, Bob and Charlie sharing the group
"Flatmates", where Alice paid 90.00 for groceries and Bob paid 30.00 for
internet. Every run creates new rows and prints their ids.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		fx, err := seed.Demo(cmd.Context(), deps.Store)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "group    %s\n", fx.GroupID)
		fmt.Fprintf(out, "alice    %s\n", fx.Alice)
		fmt.Fprintf(out, "bob      %s\n", fx.Bob)
		fmt.Fprintf(out, "charlie  %s\n", fx.Charlie)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
