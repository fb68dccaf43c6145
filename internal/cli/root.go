// Package cli exposes the site auditor over a single cobra root command
// with two subcommands: "audit" runs one report to stdout, "serve"
// starts the authenticated HTTP API. Both share the same
// audit.Orchestrator construction path so the CLI and the server never
// drift on budgets, caching or narrator wiring.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcosalmeida/siteauditor/internal/audit"
	"github.com/marcosalmeida/siteauditor/internal/build"
	"github.com/marcosalmeida/siteauditor/internal/config"
	"github.com/marcosalmeida/siteauditor/internal/httpapi"
	"github.com/marcosalmeida/siteauditor/internal/narrator"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/internal/translate"
)

var (
	auditURL     string
	auditProfile string
	auditPretty  bool

	servePort string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "siteauditor",
	Short: "A site auditor: crawl, score and report on a website's SEO, a11y and performance signals.",
	Long: `siteauditor crawls a website breadth-first from a seed URL, extracts
structural/SEO/accessibility/performance signals from every HTML page,
verifies internal-link health, and scores the result into six
categories plus an overall roll-up.

Run "siteauditor audit --url <seed>" for a one-shot report on stdout,
or "siteauditor serve" to expose /report and /analyze_summary over HTTP.`,
	Version: build.FullVersion(),
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run one audit and print the report JSON to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditURL == "" {
			return fmt.Errorf("--url is required")
		}

		profile := config.Profile(auditProfile)
		if profile != config.ProfileSummary && profile != config.ProfileFull {
			return fmt.Errorf("--profile must be %q or %q, got %q", config.ProfileSummary, config.ProfileFull, auditProfile)
		}

		narr := buildNarrator()
		orchestrator := audit.New(userAgentForCLI(), narr)

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithTimeout(parent, 150*time.Second)
		defer cancel()

		var payload any
		switch profile {
		case config.ProfileFull:
			outcome, err := orchestrator.RunFullReport(ctx, auditURL)
			if err != nil {
				return err
			}
			origin := translate.OrigemProcessamentoNovo
			if outcome.FromCache {
				origin = translate.OrigemCache
			}
			payload = translate.Report(outcome.Report, origin)
		case config.ProfileSummary:
			narration, err := orchestrator.RunSummary(ctx, auditURL)
			if err != nil {
				return err
			}
			payload = narration
		}

		enc := json.NewEncoder(os.Stdout)
		if auditPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(payload)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authenticated HTTP API (POST /report, POST /analyze_summary).",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg, err := config.LoadServerConfig()
		if err != nil {
			return err
		}

		var narr audit.Narrator
		if serverCfg.NarratorEnabled() {
			narr = narrator.New(serverCfg.LLMAPIKey, serverCfg.LLMModel, telemetry.NewRecorder())
		}

		orchestrator := audit.New(userAgentForCLI(), narr)
		server := httpapi.NewServer(orchestrator, serverCfg.APIToken)

		addr := ":" + servePort
		fmt.Fprintf(os.Stdout, "siteauditor listening on %s\n", addr)
		return http.ListenAndServe(addr, server.Router())
	},
}

func userAgentForCLI() string {
	return "SimpleSiteAuditBot/1.0"
}

// buildNarrator reads LLM_API_KEY/LLM_MODEL directly so "audit" works
// standalone without requiring API_TOKEN (which only gates "serve").
func buildNarrator() audit.Narrator {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil
	}
	return narrator.New(apiKey, os.Getenv("LLM_MODEL"), telemetry.NewRecorder())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	auditCmd.Flags().StringVar(&auditURL, "url", "", "seed URL to audit (required)")
	auditCmd.Flags().StringVar(&auditProfile, "profile", string(config.ProfileFull), `audit profile: "summary" or "full"`)
	auditCmd.Flags().BoolVar(&auditPretty, "pretty", false, "pretty-print the JSON output")

	serveCmd.Flags().StringVar(&servePort, "port", "8080", "TCP port to listen on")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(serveCmd)
}

// ResetFlags restores default flag values; tests that invoke the root
// command multiple times use this to avoid cross-test leakage.
func ResetFlags() {
	auditURL = ""
	auditProfile = string(config.ProfileFull)
	auditPretty = false
	servePort = "8080"
}
