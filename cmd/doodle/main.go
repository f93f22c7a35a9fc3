package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/esimov/doodle"
	"github.com/esimov/doodle/internal/config"
	"github.com/esimov/doodle/internal/logging"
	"github.com/esimov/doodle/internal/storage"
	"github.com/esimov/doodle/utils"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const HelpBanner = `
┌┬┐┌─┐┌─┐┌┬┐┬  ┌─┐
 │││ ││ │ │││  ├┤
─┴┘└─┘└─┘─┴┘┴─┘└─┘

Freehand raster drawing board.
    Version: %s

`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	configDir   = flag.String("config", ".", "Directory containing "+config.FileName)
	script      = flag.String("script", "", "Replay a JSON-lines event script")
	drop        = flag.String("drop", "", "Image file or URL dropped on the canvas")
	destination = flag.String("out", "", "Destination (defaults to export.filename, - for stdout)")
	format      = flag.String("format", "", "Export format: png, jpeg, bmp or pdf")
	width       = flag.Int("width", 0, "Canvas width")
	height      = flag.Int("height", 0, "Canvas height")
	gui         = flag.Bool("gui", false, "Open the drawing window")
	archive     = flag.Bool("archive", false, "Store the saved drawing in the gallery")
	list        = flag.Bool("list", false, "List the drawings stored in the gallery")
)

// spinner used to instantiate and call the progress indicator.
var spinner *utils.Spinner

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfgErr := config.Load(*configDir)
	settings, err := config.Settings()
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	start := time.Now()
	noColor := !term.IsTerminal(int(os.Stderr.Fd()))
	logger := logging.New(settings.LogLevel, os.Stderr, noColor)
	if settings.LogsDir != "" {
		f, err := logging.CreateLogFile(settings.LogsDir, "doodle", start)
		if err != nil {
			log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
		defer f.Close()
		logger = logging.NewWithFile(settings.LogLevel, os.Stderr, noColor, f)
	}
	if cfgErr != nil {
		logger.Debug().Err(cfgErr).Msg("using default settings")
	}

	if *archive {
		settings.Storage.Enabled = true
	}
	if *width > 0 {
		settings.Canvas.Width = *width
	}
	if *height > 0 {
		settings.Canvas.Height = *height
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.NewBackend(settings.Storage, logger)
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Unable to open the drawing gallery: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
	defer backend.Close()

	// exit closes the gallery, which os.Exit would otherwise skip.
	exit := func(code int) {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("unable to close the drawing gallery")
		}
		os.Exit(code)
	}

	if *list {
		if err := printGallery(ctx, backend); err != nil {
			log.Print(utils.DecorateText(err.Error(), utils.ErrorMessage))
			exit(1)
		}
		return
	}

	session, err := newSession(settings, logger, archiveFor(settings.Storage, backend))
	if err != nil {
		log.Printf(
			utils.DecorateText("Unable to create the drawing session: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		exit(1)
	}

	out := *destination
	if out == "" {
		out = settings.Export.Filename
	}

	if *drop != "" {
		if err := session.Dispatch(ctx, doodle.Event{Type: doodle.EventDrop, Path: *drop}); err != nil {
			printStatus("", fmt.Errorf("drop %s: %w", *drop, err))
			exit(1)
		}
	}

	if *gui {
		go func() {
			err := doodle.NewGUI(session, out).Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				printStatus("", err)
				exit(1)
			}
			exit(0)
		}()
		app.Main()
		return
	}

	if *script == "" && *drop == "" {
		flag.Usage()
		log.Print(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide an event script, an image to drop or use the -gui flag!", utils.ErrorMessage),
			utils.DefaultColor,
		))
		exit(1)
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("✎ DOODLE", utils.StatusMessage),
		utils.DecorateText("is drawing...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
	if noColor {
		spinner.SetWriter(io.Discard)
	}

	now := time.Now()
	err = render(ctx, session, *script, out, settings.Export.Format)
	printStatus(out, err)
	if err != nil {
		exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// newSession builds the drawing session from the settings.
// Saved drawings go to the archive unless it is nil.
func newSession(s config.Config, logger zerolog.Logger, archive doodle.Archiver) (*doodle.Session, error) {
	lc, err := doodle.ParseLineCap(s.Brush.Cap)
	if err != nil {
		return nil, err
	}
	brush := doodle.Brush{
		Color:    s.Brush.Color,
		Size:     s.Brush.Size,
		Cap:      lc,
		Softness: s.Brush.Softness,
	}

	policy := doodle.RedoDiscard
	if s.History.KeepRedo {
		policy = doodle.RedoKeep
	}

	opts := []doodle.Option{
		doodle.WithSize(s.Canvas.Width, s.Canvas.Height),
		doodle.WithBrush(brush),
		doodle.WithHistory(s.History.Limit, policy),
		doodle.WithLayout(doodle.Layout{WidthRatio: s.Layout.WidthRatio, HeightRatio: s.Layout.HeightRatio}),
		doodle.WithLogger(logger),
	}
	if archive != nil {
		opts = append(opts, doodle.WithArchive(archive))
	}
	return doodle.NewSession(opts...)
}

// archiveFor returns the gallery archive, or nil when storage is disabled
// and saved drawings would only end up in a throwaway in-memory gallery.
func archiveFor(cfg config.StorageConfig, backend storage.Backend) doodle.Archiver {
	if !cfg.Enabled {
		return nil
	}
	return storage.NewArchive(backend)
}

// render replays the script, if any, and saves the resulting drawing.
func render(ctx context.Context, session *doodle.Session, script, out, defaultFormat string) error {
	f, err := outputFormat(out, defaultFormat)
	if err != nil {
		return err
	}

	dst, err := openDestination(out)
	if err != nil {
		return err
	}
	defer dst.Close()

	// Capture CTRL-C signal and restore the cursor visibility back.
	go func() {
		<-ctx.Done()
		spinner.RestoreCursor()
	}()

	spinner.Start()
	defer func() {
		spinner.StopMsg = fmt.Sprintf("%s %s",
			utils.DecorateText("✎ DOODLE", utils.StatusMessage),
			utils.DecorateText("is drawing... ✔", utils.DefaultMessage))
		spinner.Stop()
	}()

	if script != "" {
		if err := replay(ctx, session, script); err != nil {
			return err
		}
	}
	return session.Save(ctx, dst, f)
}

// replay feeds the script events through the session event loop.
func replay(ctx context.Context, session *doodle.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open the event script: %v", err)
	}
	defer f.Close()

	events, err := doodle.ReadScript(f)
	if err != nil {
		return err
	}

	ch := make(chan doodle.Event)
	go func() {
		defer close(ch)
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return
			case ch <- ev:
			}
		}
	}()
	return session.Run(ctx, ch)
}

// outputFormat resolves the export format from the flag, the destination
// extension or the configured default, in this order.
func outputFormat(out, defaultFormat string) (doodle.Format, error) {
	if *format != "" {
		return doodle.ParseFormat(*format)
	}
	if out == pipeName || filepath.Ext(out) == "" {
		return doodle.ParseFormat(defaultFormat)
	}
	return doodle.FormatFromPath(out)
}

// openDestination returns the writer for the destination path.
func openDestination(out string) (io.WriteCloser, error) {
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return nopCloser{os.Stdout}, nil
	}

	dst, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %v", err)
	}
	return dst, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// printGallery lists the archived drawings, newest first.
func printGallery(ctx context.Context, backend storage.Backend) error {
	drawings, err := backend.List(ctx)
	if err != nil {
		return err
	}
	if len(drawings) == 0 {
		fmt.Fprintln(os.Stderr, utils.DecorateText("The gallery is empty.", utils.WarningMessage))
		return nil
	}
	for _, d := range drawings {
		fmt.Fprintf(os.Stdout, "%s  %-14s %4dx%-4d %s\n",
			d.ID, d.Name, d.Width, d.Height, d.CreatedAt.Local().Format(time.DateTime))
	}
	return nil
}

// printStatus displays the relevant information about the drawing process.
func printStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr,
			utils.DecorateText("\nError rendering the drawing: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		return
	}
	if fname != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe drawing has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}
