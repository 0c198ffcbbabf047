// Command ytsentiment-cli runs one analysis without the web server: it fetches
// the comments of a video, writes the processed CSV and prints the KPIs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/langdetect"
	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/vader"
	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/youtube"
	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/config"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
	"github.com/ericfisherdev/ytsentiment/internal/logging"
)

type options struct {
	video       string
	maxComments int
	maxPages    int
	out         string
	filter      model.FilterSpec
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	opts, err := parseFlags(args, cfg.DefaultMaxComments, cfg.MaxPages)
	if err != nil {
		return err
	}

	videoID, err := application.ParseVideoID(opts.video)
	if err != nil {
		return err
	}
	if opts.out == "" {
		opts.out = "comments_" + videoID + ".csv"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return err
	}
	comments, err := source.FetchComments(ctx, driven.FetchRequest{
		VideoID:     videoID,
		MaxComments: opts.maxComments,
		MaxPages:    opts.maxPages,
	})
	if err != nil {
		_, msg := application.DescribeFetchError(err)
		return fmt.Errorf("%s: %w", msg, err)
	}

	tagger := application.NewTagger(vader.NewAnalyzer(), langdetect.NewDetector(), cfg.Thresholds())
	agg := application.Apply(tagger.TagAll(comments), opts.filter)

	if err := writeCSVFile(opts.out, agg.Comments); err != nil {
		return err
	}

	return writeSummary(stdout, videoID, opts.out, agg)
}

func parseFlags(args []string, defaultMaxComments, defaultMaxPages int) (options, error) {
	var (
		opts           options
		lang, from, to string
	)

	fs := flag.NewFlagSet("ytsentiment-cli", flag.ContinueOnError)
	fs.StringVar(&opts.video, "video", "", "YouTube video URL or id (required)")
	fs.IntVar(&opts.maxComments, "max-comments", defaultMaxComments, "maximum number of comments, replies included")
	fs.IntVar(&opts.maxPages, "max-pages", defaultMaxPages, "maximum number of API pages (0 = unlimited)")
	fs.StringVar(&opts.out, "out", "", "CSV output path (default comments_<video id>.csv)")
	fs.StringVar(&lang, "lang", "", "only keep comments in this language code")
	fs.StringVar(&from, "from", "", "only keep comments published on or after this day (YYYY-MM-DD)")
	fs.StringVar(&to, "to", "", "only keep comments published on or before this day (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.video == "" && fs.NArg() > 0 {
		opts.video = fs.Arg(0)
	}
	if opts.video == "" {
		return options{}, errors.New("a video URL or id is required (-video)")
	}
	if opts.maxComments < 0 || opts.maxPages < 0 {
		return options{}, errors.New("-max-comments and -max-pages must not be negative")
	}

	filter, err := application.ParseFilter(lang, from, to)
	if err != nil {
		return options{}, err
	}
	opts.filter = filter
	return opts, nil
}

func writeCSVFile(path string, comments []model.ScoredComment) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	if err := application.WriteCSV(f, comments); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeSummary(w io.Writer, videoID, path string, agg application.Aggregate) error {
	k := application.KPIs(agg)
	d := application.Diagnose(agg.Comments)

	_, err := fmt.Fprintf(w,
		"video:        %s\ncomments:     %s\npositive:     %s%%\nneutral:      %s%%\nnegative:     %s%%\navg compound: %+.3f\nwith date:    %s\nlanguages:    %s\ncsv:          %s\n",
		videoID,
		humanize.Comma(int64(k.Total)),
		humanize.CommafWithDigits(k.PctPositive, 1),
		humanize.CommafWithDigits(k.PctNeutral, 1),
		humanize.CommafWithDigits(k.PctNegative, 1),
		k.AvgCompound,
		humanize.Comma(int64(d.WithPublished)),
		humanize.Comma(int64(d.UniqueLanguages)),
		path,
	)
	return err
}
