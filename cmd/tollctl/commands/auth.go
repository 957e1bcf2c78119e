package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringP("username", "u", "", "Operator username")
	loginCmd.Flags().StringP("password", "p", "", "Operator password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and cache an access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the cached session",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	resp, err := client.http.Post(client.host+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", resp.Status)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	if err := saveToken(result.Token); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	if client.token == "" {
		return fmt.Errorf("no cached session, log in first")
	}
	if err := client.postEmpty("/api/logout"); err != nil {
		return err
	}
	if err := clearToken(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}
