package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Angabebr/shop-tools/ai"
	"github.com/Angabebr/shop-tools/browser"
	"github.com/Angabebr/shop-tools/comments"
	"github.com/Angabebr/shop-tools/logger"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Submit or draft product page comments",
}

var submitFlags struct {
	csv         string
	url         string
	headless    bool
	chromePath  string
	userDataDir string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Post every comment from a CSV (name, title of comment, content of comment) to the product page",
	Args:  cobra.NoArgs,
	RunE:  runSubmit,
}

var draftFlags struct {
	product  string
	count    int
	language string
	out      string
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft review comments with OpenAI into a CSV for manual review",
	Args:  cobra.NoArgs,
	RunE:  runDraft,
}

func init() {
	sf := submitCmd.Flags()
	sf.StringVar(&submitFlags.csv, "csv", "", "Comments CSV (default from config: beauty_comments.csv)")
	sf.StringVar(&submitFlags.url, "url", "", "Product page URL")
	sf.BoolVar(&submitFlags.headless, "headless", false, "Run Chrome without a window")
	sf.StringVar(&submitFlags.chromePath, "chrome-path", "", "Chrome/Chromium executable")
	sf.StringVar(&submitFlags.userDataDir, "user-data-dir", "", "Chrome profile directory")

	df := draftCmd.Flags()
	df.StringVar(&draftFlags.product, "product", "", "Product name the reviews are about")
	df.IntVar(&draftFlags.count, "count", 10, "Number of comments to draft")
	df.StringVar(&draftFlags.language, "language", "", "Language of the comments (default from config)")
	df.StringVarP(&draftFlags.out, "output", "o", "", "Output CSV (default: the configured comments CSV)")

	commentsCmd.AddCommand(submitCmd, draftCmd)
	rootCmd.AddCommand(commentsCmd)
}

// headless prefers an explicit --headless flag, in either direction, over
// the configured value.
func headless(cmd *cobra.Command, configured bool) bool {
	if cmd.Flags().Changed("headless") {
		return submitFlags.headless
	}
	return configured
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Comments

	productURL := firstNonEmpty(submitFlags.url, cfg.ProductURL)
	if productURL == "" {
		return errors.New("product URL is required (--url or comments.product_url)")
	}

	list, err := comments.ReadFile(firstNonEmpty(submitFlags.csv, cfg.CSV))
	if err != nil {
		return err
	}
	logger.InfoWithFields("comments loaded", logger.Fields{"count": len(list), "url": productURL})

	opts := browser.Options{
		ExecPath:    firstNonEmpty(submitFlags.chromePath, cfg.ChromePath),
		UserDataDir: firstNonEmpty(submitFlags.userDataDir, cfg.UserDataDir),
		Headless:    headless(cmd, cfg.Headless),
	}
	if opts.UserDataDir != "" && !filepath.IsAbs(opts.UserDataDir) {
		abs, err := filepath.Abs(opts.UserDataDir)
		if err != nil {
			return err
		}
		opts.UserDataDir = abs
	}

	open := func(ctx context.Context) (comments.Session, error) {
		b, err := browser.NewBrowser(opts)
		if err != nil {
			return nil, err
		}
		logger.Log.Info("browser started")
		return b, nil
	}

	submitter := comments.NewSubmitter(productURL, cfg.Selectors, cfg.Timing())
	report, err := submitter.RunBatch(cmd.Context(), open, list)
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "📊 Submitted %d of %d comments\n", report.Submitted, report.Total)
		for _, f := range report.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "   ❌ #%d %s: %v\n", f.Index+1, f.Comment.Name, f.Err)
		}
	}
	return err
}

func runDraft(cmd *cobra.Command, args []string) error {
	cfg := appConfig.OpenAI

	client, err := ai.NewClient(cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}

	drafts, err := client.DraftComments(cmd.Context(), ai.DraftRequest{
		Product:  draftFlags.product,
		Count:    draftFlags.count,
		Language: firstNonEmpty(draftFlags.language, cfg.Language),
	})
	if err != nil {
		return err
	}

	out := firstNonEmpty(draftFlags.out, appConfig.Comments.CSV)
	if err := comments.WriteFile(out, drafts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "📝 Drafted %d comments into %s, review them before submitting\n", len(drafts), out)
	return nil
}
