package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.AddCommand(resetPassesCmd)
	rootCmd.AddCommand(resetStationsCmd)
	rootCmd.AddCommand(adminCmd)

	resetStationsCmd.Flags().StringP("file", "f", "", "Station manifest CSV (omit to use the server-side manifest)")

	adminCmd.Flags().Bool("users", false, "List operator accounts")
	adminCmd.Flags().Bool("usermod", false, "Create or update an operator account")
	adminCmd.Flags().String("addpasses", "", "Upload a pass-event CSV")
	adminCmd.Flags().String("id", "", "Operator ID (usermod)")
	adminCmd.Flags().String("username", "", "Login username (usermod)")
	adminCmd.Flags().String("name", "", "Display name (usermod)")
	adminCmd.Flags().String("passw", "", "Password, empty keeps the current one (usermod)")
	adminCmd.Flags().Bool("admin", false, "Grant admin rights (usermod)")
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check API and database health",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.get("/api/admin/healthcheck")
	},
}

var resetPassesCmd = &cobra.Command{
	Use:   "resetpasses",
	Short: "Delete every recorded toll pass",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return client.postEmpty("/api/admin/resetpasses")
	},
}

var resetStationsCmd = &cobra.Command{
	Use:   "resetstations",
	Short: "Reload the station roster from a manifest CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return client.postEmpty("/api/admin/resetstations")
		}
		return client.postFile("/api/admin/resetstations", file)
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Account management and data loading",
	RunE:  runAdmin,
}

func runAdmin(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	users, _ := cmd.Flags().GetBool("users")
	usermod, _ := cmd.Flags().GetBool("usermod")
	addpasses, _ := cmd.Flags().GetString("addpasses")

	switch {
	case users:
		return client.get("/api/admin/users")

	case addpasses != "":
		return client.postFile("/api/admin/addpasses", addpasses)

	case usermod:
		id, _ := cmd.Flags().GetString("id")
		username, _ := cmd.Flags().GetString("username")
		if id == "" || username == "" {
			return fmt.Errorf("--usermod requires --id and --username")
		}
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("passw")
		isAdmin, _ := cmd.Flags().GetBool("admin")
		return client.postJSON("/api/admin/usermod", map[string]any{
			"id":       id,
			"username": username,
			"name":     name,
			"password": password,
			"admin":    isAdmin,
		})

	default:
		return fmt.Errorf("specify one of --users, --usermod or --addpasses")
	}
}
