// Package main provides the toner CLI, a client for the text toner API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version info set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "toner",
	Short: "Emotional tone analysis and rewriting",
	Long: `Toner classifies the emotional tone of a text (sad, angry, or
friendly) and produces a tone-preserving rewrite using the text toner API.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Analyze the tone of a text and get an improved rewrite",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var tonesCmd = &cobra.Command{
	Use:   "tones",
	Short: "List the supported tone labels",
	RunE:  runTones,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API server health",
	RunE:  runHealth,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("toner %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TONER_SERVER", "http://localhost:8080"), "API server base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tonesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type analyzeResponse struct {
	Tone         string `json:"tone"`
	ImprovedText string `json:"improved_text"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := args[0]

	interactive := isatty.IsTerminal(os.Stderr.Fd())
	color.NoColor = color.NoColor || !isatty.IsTerminal(os.Stdout.Fd())

	var spin *spinner.Spinner
	if interactive && !jsonOutput {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Analyzing tone..."
		spin.Start()
	}

	body, err := postJSON(serverURL+"/api/v1/tone/analyze", map[string]string{"text": text})

	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	var result analyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(os.Stdout, text, result)
	return nil
}

func printResult(w io.Writer, original string, r analyzeResponse) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = bold.Fprint(w, "TONE  ")
	_, _ = toneColor(r.Tone).Fprintln(w, strings.ToUpper(r.Tone))
	fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "IMPROVED")
	fmt.Fprintln(w, r.ImprovedText)

	if strings.EqualFold(strings.TrimSpace(original), r.ImprovedText) {
		fmt.Fprintln(w)
		_, _ = dim.Fprintln(w, "The text was returned unchanged.")
	}
}

func toneColor(tone string) *color.Color {
	switch tone {
	case "sad":
		return color.New(color.FgBlue)
	case "angry":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgGreen)
	}
}

func runTones(cmd *cobra.Command, args []string) error {
	body, err := getJSON(serverURL + "/api/v1/tone/supported-tones")
	if err != nil {
		return err
	}

	var resp struct {
		SupportedTones []string `json:"supported_tones"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	for _, t := range resp.SupportedTones {
		fmt.Println(t)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	body, err := getJSON(serverURL + "/health")
	if err != nil {
		return err
	}

	if jsonOutput {
		fmt.Println(string(body))
		return nil
	}

	var resp struct {
		Status            string `json:"status"`
		DatabaseConnected bool   `json:"database_connected"`
		ModelLoaded       bool   `json:"model_loaded"`
		ModelState        string `json:"model_state"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	statusColor := color.New(color.FgGreen)
	if resp.Status != "healthy" {
		statusColor = color.New(color.FgRed)
	}
	_, _ = statusColor.Printf("%s\n", resp.Status)
	fmt.Printf("  database: %v\n", resp.DatabaseConnected)
	fmt.Printf("  model:    %s\n", resp.ModelState)
	return nil
}

func postJSON(url string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func getJSON(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
