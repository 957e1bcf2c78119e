package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const tokenFileName = "token"

var rootCmd = &cobra.Command{
	Use:   "tollctl",
	Short: "Command-line client for the toll interoperability back office",
	Long: `tollctl drives the toll interoperability REST API from the terminal.
Log in once with 'tollctl login'; the access token is cached under
~/.tollctl and attached to every subsequent request.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("host", "http://localhost:9115", "Base URL of the API server")
	rootCmd.PersistentFlags().String("format", "json", "Response format: json or csv")
}

type apiClient struct {
	host   string
	format string
	token  string
	http   *http.Client
}

func newClient(cmd *cobra.Command) (*apiClient, error) {
	host, _ := cmd.Flags().GetString("host")
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected json or csv)", format)
	}
	token, err := loadToken()
	if err != nil {
		return nil, err
	}
	return &apiClient{
		host:   strings.TrimRight(host, "/"),
		format: format,
		token:  token,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// get performs a GET with the format passthrough and prints the raw body.
func (c *apiClient) get(path string) error {
	req, err := http.NewRequest(http.MethodGet, c.host+path+"?format="+c.format, nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

func (c *apiClient) postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *apiClient) postEmpty(path string) error {
	req, err := http.NewRequest(http.MethodPost, c.host+path, nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

// postFile uploads the named file as the "file" part of a multipart body.
func (c *apiClient) postFile(path, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.host+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *apiClient) do(req *http.Request) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		fmt.Println("no content")
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if len(body) > 0 {
		fmt.Println(strings.TrimSpace(string(body)))
	}
	return nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tollctl", tokenFileName), nil
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func clearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
