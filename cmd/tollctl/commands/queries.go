package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tollStationPassesCmd)
	rootCmd.AddCommand(passAnalysisCmd)
	rootCmd.AddCommand(passesCostCmd)
	rootCmd.AddCommand(chargesByCmd)
}

var tollStationPassesCmd = &cobra.Command{
	Use:   "tollstationpasses STATION_ID DATE_FROM DATE_TO",
	Short: "List the passes recorded at a station (dates are YYYYMMDD)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.get(fmt.Sprintf("/api/tollStationPasses/%s/%s/%s", args[0], args[1], args[2]))
	},
}

var passAnalysisCmd = &cobra.Command{
	Use:   "passanalysis STATION_OP_ID TAG_OP_ID DATE_FROM DATE_TO",
	Short: "List the passes at one operator's stations made with another operator's tags",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.get(fmt.Sprintf("/api/passAnalysis/%s/%s/%s/%s", args[0], args[1], args[2], args[3]))
	},
}

var passesCostCmd = &cobra.Command{
	Use:   "passescost TOLL_OP_ID TAG_OP_ID DATE_FROM DATE_TO",
	Short: "Total cost of one operator's passes on another operator's stations",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.get(fmt.Sprintf("/api/passesCost/%s/%s/%s/%s", args[0], args[1], args[2], args[3]))
	},
}

var chargesByCmd = &cobra.Command{
	Use:   "chargesby TOLL_OP_ID DATE_FROM DATE_TO",
	Short: "Charges owed to a station operator, broken down by visiting operator",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.get(fmt.Sprintf("/api/chargesBy/%s/%s/%s", args[0], args[1], args[2]))
	},
}
