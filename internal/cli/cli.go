package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agenda-ics/internal/browser"
	"github.com/pfrederiksen/agenda-ics/internal/calendar"
	"github.com/pfrederiksen/agenda-ics/internal/config"
	"github.com/pfrederiksen/agenda-ics/internal/crawl"
	"github.com/pfrederiksen/agenda-ics/internal/datetime"
	"github.com/pfrederiksen/agenda-ics/internal/event"
	"github.com/pfrederiksen/agenda-ics/internal/extract"
	"github.com/pfrederiksen/agenda-ics/internal/logger"
	"github.com/pfrederiksen/agenda-ics/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagURL       string
	flagOutputDir string
	flagMaxPages  int
	flagMaxEvents int
	flagDetail    bool
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda-ics",
		Short: "Scrape the Palau Sant Jordi agenda into an iCalendar file",
		Long: `Scrapes the venue's client-side-rendered agenda listing, extracts and
deduplicates events, and writes them as events.ics. Finding no events is not
an error: the run exits successfully without touching any previous calendar.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagURL, "url", config.AgendaURL, "Agenda listing URL")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "public", "Directory for events.ics and debug.html")
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 4, "Maximum listing pages to visit")
	cmd.Flags().IntVar(&flagMaxEvents, "max-events", 120, "Maximum events to collect")
	cmd.Flags().BoolVar(&flagDetail, "detail", false, "Fetch each event's own page instead of extracting from cards")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("building configuration: %w", err)
	}
	cfg.AgendaURL = flagURL
	cfg.OutputDir = flagOutputDir
	cfg.MaxPages = flagMaxPages
	cfg.MaxEvents = flagMaxEvents
	cfg.DetailMode = flagDetail

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	ctx := context.Background()

	// The browser is the only shared resource: acquired once per run,
	// released on every exit path.
	b, err := browser.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer b.Close()

	resolver := datetime.NewResolver(cfg)
	extractor := extract.New(cfg, resolver)
	links := extract.NewLinkDiscoverer(cfg)
	crawler := crawl.New(cfg, b, extractor, links)

	records, err := crawler.Run(ctx, store.WriteDebugHTML)
	if err != nil {
		return fmt.Errorf("crawling agenda: %w", err)
	}

	mode := event.ListingMode
	if cfg.DetailMode {
		mode = event.DetailMode
	}
	unique := event.Dedupe(records, mode)

	logger.Info("crawl finished", logger.Fields{
		"records":  len(records),
		"unique":   len(unique),
		"counters": logger.CounterSnapshot(),
	})

	if len(unique) == 0 {
		fmt.Println("No events found; calendar not written.")
		return nil
	}

	cal := calendar.NewBuilder(cfg).Build(unique)
	path, err := store.WriteCalendar(cal.Serialize())
	if err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	fmt.Printf("Wrote %d events to %s\n", len(unique), path)
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
