package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	balanceGroupID  string
	balanceViewerID string
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balances of a group",
	Long: `Print every member's paid amount, share, settled amount and balance,
followed by a set of transfers that would settle the group.

With --viewer (or VIEWER_ID) the viewer's own balance is printed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, deps, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		viewer := balanceViewerID
		if viewer == "" {
			viewer = cfg.ViewerID
		}

		ledger, err := deps.Store.LoadLedger(cmd.Context(), balanceGroupID)
		if err != nil {
			return err
		}
		users, err := deps.Store.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		names := make(map[string]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Name
		}
		return printBalances(cmd.OutOrStdout(), ledger, names, viewer)
	},
}

func init() {
	balanceCmd.Flags().StringVarP(&balanceGroupID, "group", "g", "", "group ID")
	balanceCmd.Flags().StringVarP(&balanceViewerID, "viewer", "v", "", "viewer user ID (default $VIEWER_ID)")
	_ = balanceCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(balanceCmd)
}

func printBalances(out io.Writer, ledger *storage.Ledger, names map[string]string, viewer string) error {
	input := ledger.Input()

	fmt.Fprintf(out, "%s\n", ledger.Group.Title)
	if viewer != "" {
		if !ledger.Group.HasMember(viewer) {
			return fmt.Errorf("user %s is not a member of group %s", viewer, ledger.Group.ID)
		}
		fmt.Fprintf(out, "your balance: %s\n", models.Format(calculator.ComputeBalance(input, viewer)))
	}
	fmt.Fprintln(out)

	balances := calculator.ComputeBalances(input)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MEMBER\tPAID\tSHARE\tSETTLED\tBALANCE\t")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			displayName(names, b.UserID),
			models.Format(b.Paid),
			models.Format(b.Share),
			models.Format(b.Settled),
			models.Format(b.Net),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	transfers := calculator.SimplifyDebts(balances)
	if len(transfers) == 0 {
		fmt.Fprintln(out, "\nall settled")
		return nil
	}
	fmt.Fprintln(out, "\nsuggested transfers:")
	for _, t := range transfers {
		fmt.Fprintf(out, "  %s -> %s  %s\n", displayName(names, t.From), displayName(names, t.To), models.Format(t.Amount))
	}
	return nil
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
