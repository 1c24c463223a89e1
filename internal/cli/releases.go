package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/cli/pagination"
	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/releases"
)

type releaseRow struct {
	Tag       string          `json:"tag"`
	Channel   catalog.Channel `json:"channel"`
	Published time.Time       `json:"published_at"`
	Downloads int             `json:"downloads"`
	Download  *releases.Link  `json:"download,omitempty"`
}

// resolvePlatform parses --platform, defaulting to the running machine.
func resolvePlatform(flag string) (releases.Platform, error) {
	if flag == "" {
		return releases.DetectPlatform(runtime.GOOS, runtime.GOARCH), nil
	}
	p := releases.ParsePlatform(flag)
	if p.OS == releases.OSUnknown {
		names := make([]string, 0, len(releases.SupportedPlatforms()))
		for _, sp := range releases.SupportedPlatforms() {
			names = append(names, sp.String())
		}
		return p, usageError("unknown platform %q (use one of %s)", flag, strings.Join(names, ", "))
	}
	return p, nil
}

// newReleasesListCmd lists recent TREM-Lite releases.
func newReleasesListCmd() *cobra.Command {
	var (
		all          bool
		platformFlag string
		page         pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent TREM-Lite releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if err = page.Validate(); err != nil {
				return usageError("%w", err)
			}
			platform, err := resolvePlatform(platformFlag)
			if err != nil {
				return err
			}
			res, err := a.loadReleases(cmd.Context())
			if err != nil {
				return err
			}

			list := res.Value
			if !all {
				list = releases.Recent(list, releases.MaxReleases)
			}
			total := len(list)
			list = pagination.Apply(page, list)

			rows := make([]releaseRow, len(list))
			for i, r := range list {
				rows[i] = releaseRow{
					Tag:       r.TagName,
					Channel:   catalog.ChannelOf(r.TagName),
					Published: r.PublishedAt,
					Downloads: r.Downloads(),
				}
				if link, ok := releases.DownloadLink(r, platform); ok {
					rows[i].Download = &link
				}
			}

			out := cmd.OutOrStdout()
			switch a.output {
			case outputJSON:
				doc := map[string]any{"platform": platform, "releases": rows}
				if page.IsEnabled() {
					doc["pagination"] = pagination.NewMeta(page, total)
				}
				return renderJSON(out, doc)
			case outputNDJSON:
				return renderNDJSON(out, rows)
			case outputTable:
			}

			stats := releases.ComputeDownloadStats(res.Value, releases.SelectVersion(res.Value, ""))
			fmt.Fprintf(out, "Platform: %s\n\n", platform.Label())
			tw := newTable(out)
			fmt.Fprintln(tw, "TAG\tCHANNEL\tPUBLISHED\tDOWNLOADS\tINSTALLER")
			for _, r := range rows {
				installer := "-"
				if r.Download != nil {
					installer = fmt.Sprintf("%s (%s)", r.Download.Asset, r.Download.Size)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.Tag, r.Channel.Label(), display.Timestamp(r.Published),
					display.Number(int64(r.Downloads)), installer)
			}
			if err = tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal downloads: %s\n", display.Number(int64(stats.Total)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, fmt.Sprintf("show every release, not just the newest %d", releases.MaxReleases))
	cmd.Flags().StringVar(&platformFlag, "platform", "", "installer platform as os/arch, e.g. mac/arm64 (default: this machine)")
	page.AddFlags(cmd)
	return cmd
}

type downloadOutput struct {
	Version   string            `json:"version"`
	Platform  releases.Platform `json:"platform"`
	Link      releases.Link     `json:"link"`
	Downloads int               `json:"downloads"`
	SavedTo   string            `json:"saved_to,omitempty"`
}

// newReleasesDownloadCmd resolves, and optionally saves, an installer.
func newReleasesDownloadCmd() *cobra.Command {
	var (
		platformFlag string
		saveDir      string
	)

	cmd := &cobra.Command{
		Use:   "download [version]",
		Short: "Show or save the TREM-Lite installer for a platform",
		Long: "Resolve the installer of a release for a platform. The version matches the first tag " +
			"containing it; without a version the newest stable release is used.",
		Example: `  # Installer link for this machine
  tremstore releases download

  # Save the 2.0 Apple Silicon installer
  tremstore releases download 2.0.0 --platform mac/arm64 --save ~/Downloads`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			return runReleasesDownload(cmd, requested, platformFlag, saveDir)
		},
	}

	cmd.Flags().StringVar(&platformFlag, "platform", "", "installer platform as os/arch (default: this machine)")
	cmd.Flags().StringVar(&saveDir, "save", "", "download the installer into this directory")
	return cmd
}

func runReleasesDownload(cmd *cobra.Command, requested, platformFlag, saveDir string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	platform, err := resolvePlatform(platformFlag)
	if err != nil {
		return err
	}
	if platform.AssetSuffix() == "" {
		return fmt.Errorf("no installer is published for %s; pass --platform", platform.Label())
	}

	res, err := a.loadReleases(ctx)
	if err != nil {
		return err
	}
	tag := releases.SelectVersion(res.Value, requested)
	release, ok := releases.FindRelease(res.Value, tag)
	if !ok || !strings.Contains(tag, requested) {
		return fmt.Errorf("no release matches %q", requested)
	}
	link, ok := releases.DownloadLink(release, platform)
	if !ok {
		return fmt.Errorf("release %s has no installer for %s", tag, platform.Label())
	}

	result := downloadOutput{
		Version:   tag,
		Platform:  platform,
		Link:      link,
		Downloads: releases.ComputeDownloadStats(res.Value, tag).Version,
	}

	if saveDir != "" {
		if err = ensureDir(saveDir); err != nil {
			return fmt.Errorf("--save: %w", err)
		}
		dest := filepath.Join(saveDir, filepath.Base(link.Asset))
		errOut := cmd.ErrOrStderr()
		progress := func(written, total int64) {
			if total > 0 {
				fmt.Fprintf(errOut, "\rDownloading %s: %s / %s", link.Asset, display.FileSize(written), display.FileSize(total))
			}
		}
		if err = a.github.DownloadAsset(ctx, link.URL, dest, progress); err != nil {
			return err
		}
		fmt.Fprintln(errOut)
		result.SavedTo = dest
		logger.Info().Ctx(ctx).
			Str("operation", "download").
			Str("version", tag).
			Str("platform", platform.String()).
			Str("path", dest).
			Msg("installer saved")
	}

	out := cmd.OutOrStdout()
	if a.output != outputTable {
		return renderJSON(out, result)
	}

	tw := newTable(out)
	fmt.Fprintf(tw, "Version:\t%s [%s]\n", tag, catalog.ChannelOf(tag).Label())
	fmt.Fprintf(tw, "Platform:\t%s\n", platform.Label())
	fmt.Fprintf(tw, "Installer:\t%s (%s)\n", link.Asset, link.Size)
	fmt.Fprintf(tw, "Downloads:\t%s\n", display.Number(int64(result.Downloads)))
	fmt.Fprintf(tw, "URL:\t%s\n", link.URL)
	if result.SavedTo != "" {
		fmt.Fprintf(tw, "Saved to:\t%s\n", result.SavedTo)
	}
	return tw.Flush()
}

// newReleasesNotesCmd prints the release notes of a version.
func newReleasesNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes [version]",
		Short: "Print the release notes of a TREM-Lite version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			version := ""
			if len(args) == 1 {
				version = args[0]
			} else {
				res, loadErr := a.loadReleases(ctx)
				if loadErr != nil {
					return loadErr
				}
				version = releases.SelectVersion(res.Value, "")
			}

			notes, err := a.notesClient().Get(ctx, version)
			if err != nil {
				return err
			}
			if a.output != outputTable {
				return renderJSON(cmd.OutOrStdout(), notes)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", notes.Version)
			_, err = io.WriteString(out, strings.TrimRight(notes.Text, "\n")+"\n")
			return err
		},
	}
}

// newReleasesSizesCmd prints installer sizes per version and platform.
func newReleasesSizesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "Show installer sizes (MB) per version and platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			res, err := a.loadReleases(cmd.Context())
			if err != nil {
				return err
			}
			list := res.Value
			if !all {
				list = releases.Recent(list, releases.MaxReleases)
			}
			series := releases.SizeSeries(list)

			out := cmd.OutOrStdout()
			switch a.output {
			case outputJSON:
				return renderJSON(out, series)
			case outputNDJSON:
				return renderNDJSON(out, series)
			case outputTable:
			}

			names := releases.SizeSeriesNames()
			tw := newTable(out)
			fmt.Fprintf(tw, "VERSION\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
			for _, p := range series {
				cells := make([]string, len(names))
				for i, n := range names {
					cells[i] = "-"
					if mb, ok := p.Sizes[n]; ok {
						cells[i] = strconv.FormatFloat(mb, 'f', 2, 64)
					}
				}
				fmt.Fprintf(tw, "%s\t%s\n", p.Version, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include every release")
	return cmd
}

// ensureDir creates dir when missing and rejects non-directories.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o750)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
