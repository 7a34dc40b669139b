package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"elecciones/internal/config"
	"elecciones/internal/fetcher"
	"elecciones/internal/handlers"
	"elecciones/internal/models"
	"elecciones/internal/parser"
	"elecciones/internal/pipeline"
	"elecciones/internal/storage"
	"elecciones/internal/telemetry"
)

// newRootCmd builds the elecciones command tree on the pocketbase root.
// Any command pocketbase registered on it is dropped.
func newRootCmd(app *pocketbase.PocketBase, cfg config.Config) *cobra.Command {
	root := app.RootCmd
	root.Use = "elecciones"
	root.Short = "Ingest JNE party and candidate snapshots into sqlite"
	root.SilenceUsage = true

	var verbose bool
	root.PersistentFlags().BoolVar(&verbose, "verbose", cfg.Verbose, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	}

	root.RemoveCommand(root.Commands()...)
	root.AddCommand(newIngestCmd(app, cfg), newListCmd(app))
	return root
}

func newIngestCmd(app core.App, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Replace the stored parties and/or candidates with the content of HTML snapshots",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.Sources.Parties, "parties", cfg.Sources.Parties, "party registry snapshot")
	flags.StringVar(&cfg.Sources.Governors, "governors", cfg.Sources.Governors, "regional governor candidates snapshot")
	flags.StringVar(&cfg.Sources.Mayors, "mayors", cfg.Sources.Mayors, "mayor candidates snapshot")
	flags.BoolVar(&cfg.Fetch.CloudflareBypass, "cloudflare", cfg.Fetch.CloudflareBypass, "use the cloudflare bypass transport for downloads")

	run := func(pipelines ...models.Pipeline) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return ingest(cmd.Context(), cmd.OutOrStdout(), app, cfg, pipelines...)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "parties",
			Short: "Ingest the JNE party registry",
			Args:  cobra.NoArgs,
			RunE:  run(models.PipelineParties),
		},
		&cobra.Command{
			Use:   "candidates",
			Short: "Ingest governor and mayor candidates",
			Args:  cobra.NoArgs,
			RunE:  run(models.PipelineCandidates),
		},
		&cobra.Command{
			Use:   "all",
			Short: "Ingest parties, then candidates",
			Args:  cobra.NoArgs,
			RunE:  run(models.PipelineParties, models.PipelineCandidates),
		},
	)
	return cmd
}

func ingest(ctx context.Context, out io.Writer, app core.App, cfg config.Config, pipelines ...models.Pipeline) error {
	store, closeStore, err := storage.OpenStore(ctx, app)
	if err != nil {
		return err
	}
	defer closeStore()

	parsers, err := parser.NewParserManager(parser.ManagerOptions{
		PartyBaseURL:     cfg.PartyBaseURL,
		CandidateBaseURL: cfg.CandidateBaseURL,
	})
	if err != nil {
		return err
	}
	assets := fetcher.New(fetcher.Options{
		Timeout:          cfg.Fetch.Timeout(),
		UserAgent:        cfg.Fetch.UserAgent,
		Referer:          cfg.Fetch.Referer,
		CloudflareBypass: cfg.Fetch.CloudflareBypass,
	})
	runner := pipeline.New(parsers, assets, store, pipeline.WithLinkThreshold(cfg.LinkThreshold))

	var reports []pipeline.Report
	defer func() { pipeline.RenderReports(out, reports...) }()

	for _, p := range pipelines {
		sources := cfg.PartySources()
		if p == models.PipelineCandidates {
			sources = cfg.CandidateSources()
		}
		report, err := runner.Run(ctx, p, sources)
		reports = append(reports, report)
		if err != nil {
			return fmt.Errorf("%s pipeline failed: %w", p, err)
		}
	}
	return nil
}

func newListCmd(app core.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored records as JSON",
	}
	var indent bool
	cmd.PersistentFlags().BoolVar(&indent, "indent", false, "indent the JSON output")

	withHandler := func(fn func(ctx context.Context, w io.Writer, h *handlers.ListHandler) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := storage.OpenStore(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer closeStore()
			return fn(cmd.Context(), cmd.OutOrStdout(), handlers.NewListHandler(store, indent))
		}
	}

	var candidateFilter storage.CandidateFilter
	candidates := &cobra.Command{
		Use:   "candidates",
		Short: "List candidates with their linked party",
		Args:  cobra.NoArgs,
		RunE: withHandler(func(ctx context.Context, w io.Writer, h *handlers.ListHandler) error {
			return h.HandleListCandidates(ctx, w, candidateFilter)
		}),
	}
	candidates.Flags().StringVar(&candidateFilter.Region, "region", "", "region substring, ignoring case and accents")
	candidates.Flags().StringVar(&candidateFilter.CandidacyType, "type", "", "candidacy type substring, ignoring case and accents")

	var centerFilter storage.CenterFilter
	centers := &cobra.Command{
		Use:   "centers",
		Short: "List voting centers",
		Args:  cobra.NoArgs,
		RunE: withHandler(func(ctx context.Context, w io.Writer, h *handlers.ListHandler) error {
			return h.HandleListCenters(ctx, w, centerFilter)
		}),
	}
	centers.Flags().StringVar(&centerFilter.District, "district", "", "district substring, ignoring case and accents")
	centers.Flags().StringVar(&centerFilter.Name, "name", "", "name substring, ignoring case and accents")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "parties",
			Short: "List parties, logos base64 encoded",
			Args:  cobra.NoArgs,
			RunE: withHandler(func(ctx context.Context, w io.Writer, h *handlers.ListHandler) error {
				return h.HandleListParties(ctx, w)
			}),
		},
		candidates,
		centers,
	)
	return cmd
}
