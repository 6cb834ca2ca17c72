// Command repos looks up a GitHub user's repositories from the terminal,
// one page at a time, sorted by stars.
//
//	repos lookup octocat
//	repos lookup octocat --page 2 --sort asc
//	repos lookup octocat --json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/repo-explorer/internal/explorer"
	"github.com/sakif/repo-explorer/internal/github"
	"github.com/sakif/repo-explorer/internal/logging"
	"github.com/sakif/repo-explorer/internal/model"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "repos",
		Short:         "Browse a GitHub user's repositories by stars",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream requests to stderr")

	var (
		page    int
		sort    string
		asJSON  bool
		apiURL  string
		token   string
		timeout time.Duration
	)

	lookupCmd := &cobra.Command{
		Use:   "lookup USERNAME",
		Short: "Print one page of a user's repositories",
		Long: "Fetch one page of USERNAME's public repositories, ten per page, sorted by star count, " +
			"followed by the page indicator.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := model.ParseSortOrder(sort)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("invalid page %d: must be at least 1", page)
			}

			logger := logging.ForCLI(stderr, verbose)

			client, err := github.New(github.Config{
				BaseURL: apiURL,
				Token:   token,
				Timeout: timeout,
			}, logger)
			if err != nil {
				return err
			}

			username := args[0]
			e := explorer.New(client, logger, explorer.WithState(model.SearchState{
				Username: username,
				Sort:     order,
				Page:     page,
			}))
			snap := e.FetchPage(context.Background(), username, page, order)

			if asJSON {
				encoder := json.NewEncoder(stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(snap); err != nil {
					return err
				}
			} else {
				printSnapshot(stdout, snap)
			}

			if snap.Result.Outcome == model.OutcomeFailure {
				return errors.New(snap.Result.Error)
			}
			return nil
		},
	}
	lookupCmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	lookupCmd.Flags().StringVarP(&sort, "sort", "s", string(model.SortDescending), "sort order: desc (most stars) or asc (fewest stars)")
	lookupCmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	lookupCmd.Flags().StringVar(&apiURL, "api-url", envOr("GITHUB_API_URL", github.DefaultBaseURL), "GitHub API base URL")
	lookupCmd.Flags().StringVar(&token, "token", os.Getenv("GITHUB_TOKEN"), "GitHub token (default $GITHUB_TOKEN)")
	lookupCmd.Flags().DurationVar(&timeout, "timeout", github.DefaultTimeout, "timeout per API request")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// printSnapshot writes one line per repository and the page indicator.
func printSnapshot(w io.Writer, snap model.Snapshot) {
	if snap.Result.Outcome == model.OutcomeFailure {
		return
	}
	if len(snap.Result.Repositories) == 0 {
		fmt.Fprintln(w, "no repositories")
		return
	}

	for _, r := range snap.Result.Repositories {
		fmt.Fprintf(w, "★ %6d  %s  %s\n", r.Stars, r.Name, r.URL)
		if r.Description != "" {
			fmt.Fprintf(w, "          %s\n", r.Description)
		}
	}

	total := "?"
	if snap.State.TotalKnown {
		total = fmt.Sprint(snap.State.TotalPages)
	}
	fmt.Fprintf(w, "Page %d of %s\n", snap.State.Page, total)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
