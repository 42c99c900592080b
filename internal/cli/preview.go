package cli

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/pixelpad/internal/image"
	"github.com/jmylchreest/pixelpad/internal/render"
	"github.com/jmylchreest/pixelpad/internal/session"
	"github.com/jmylchreest/pixelpad/internal/settings"
)

// errTerminalOutput is returned when PNG data would be written to a terminal.
var errTerminalOutput = errors.New("refusing to write PNG data to a terminal; use --output or redirect stdout")

type previewOptions struct {
	file      string
	colors    string
	settings  string
	maxColors int
	width     int
	height    int
	output    string
}

func newPreviewCmd() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a palette preview without the HTTP service",
		Long: `Create a colour session and render its preview in one step.

The source image may be a local file or an HTTP(S) URL. When it is a PNG
its dimensions set the canvas size.

Examples:
  # Full palette as horizontal bands
  pixelpad preview -o palette.png

  # Stipple preview of a single colour, sized from an image
  pixelpad preview --file wallpaper.png --colors B2 -o b2.png

  # Two colours in request order, written to stdout
  pixelpad preview --colors C3,A1 --width 64 --height 64 > bands.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "source image path or URL")
	cmd.Flags().StringVar(&opts.colors, "colors", "", "comma-separated colour ids to render (default: full palette)")
	cmd.Flags().StringVar(&opts.settings, "settings", "", "settings file recorded on the session (default from config)")
	cmd.Flags().IntVar(&opts.maxColors, "max-colors", 0, "limit the detected palette to this many colours")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width (needs --height)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height (needs --width)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runPreview(cmd *cobra.Command, opts previewOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.LogLevel, cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	if opts.output == "" {
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errTerminalOutput
		}
	}

	create := session.CreateOptions{SettingsFile: opts.settings}
	if create.SettingsFile == "" {
		create.SettingsFile = cfg.DefaultSettingsFile
	}
	if err := settings.ValidateName(create.SettingsFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("max-colors") {
		n := opts.maxColors
		create.MaxColors = &n
	}
	if opts.width < 0 || opts.height < 0 || opts.width > math.MaxInt32 || opts.height > math.MaxInt32 {
		return fmt.Errorf("invalid dimensions %dx%d", opts.width, opts.height)
	}
	create.Width, create.Height = uint32(opts.width), uint32(opts.height)

	if opts.file != "" {
		logger.Debug("loading source", "source", opts.file)
		data, err := image.LoadSource(cmd.Context(), opts.file, cfg.MaxUploadBytes())
		if err != nil {
			return err
		}
		if info, err := image.Inspect(data); err == nil {
			logger.Debug("source loaded", "format", info.Format, "width", info.Width, "height", info.Height)
		}
		create.Upload = data
	}

	width, height := create.Size()
	if int64(width)*int64(height) > cfg.MaxCanvasPixels {
		return fmt.Errorf("canvas %dx%d exceeds %d pixels", width, height, cfg.MaxCanvasPixels)
	}

	reg := session.NewRegistry()
	sess := reg.Create(create)
	res, err := render.NewDispatcher(reg).Render(sess.ID, opts.colors)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		tbl := newTable("ID", "COUNT", "HEX")
		for _, c := range sess.DetectedColors {
			tbl.addRow(c.ID, strconv.FormatUint(uint64(c.PixelCount), 10), c.Hex)
		}
		if err := tbl.render(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	logger.Debug("rendered preview",
		"session", sess.ID,
		"pattern", res.Pattern.Kind.String(),
		"width", sess.Width,
		"height", sess.Height,
		"bytes", len(res.PNG))

	if opts.output == "" {
		if _, err := out.Write(res.PNG); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(opts.output, res.PNG, 0o644); err != nil { // #nosec G306 - Preview images are not sensitive
		return fmt.Errorf("failed to write preview: %w", err)
	}
	logger.Info("wrote preview", "path", opts.output)
	return nil
}
