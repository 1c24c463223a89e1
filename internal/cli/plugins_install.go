package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/catalog"
)

type installOutput struct {
	Plugin      string `json:"plugin"`
	Version     string `json:"version"`
	Verified    bool   `json:"verified"`
	DownloadURL string `json:"download_url"`
	InstallURL  string `json:"install_url"`
	Opened      bool   `json:"opened"`
}

// newPluginsInstallCmd prints a plugin's install link and optionally opens it.
func newPluginsInstallCmd() *cobra.Command {
	var (
		tag  string
		open bool
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Print the TREM-Lite install link for a plugin",
		Long: "Print the install link for a plugin. With --open the link is handed to the " +
			"operating system, which starts the installation in TREM-Lite after confirmation.",
		Example: `  # Print the install link of the latest release
  tremstore plugins install tts

  # Install a specific release in TREM-Lite
  tremstore plugins install tts --version v1.2.0 --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsInstall(cmd, args[0], tag, open, yes)
		},
	}

	cmd.Flags().StringVar(&tag, "version", "", "release tag to install (default: latest)")
	cmd.Flags().BoolVar(&open, "open", false, "open the install link in TREM-Lite")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation with --open")
	return cmd
}

func runPluginsInstall(cmd *cobra.Command, name, tag string, open, yes bool) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, _, err := findPlugin(cmd, a, name)
	if err != nil {
		return err
	}
	if tag != "" && !hasRelease(p, tag) {
		return fmt.Errorf("plugin %s has no release %q", p.Name, tag)
	}

	result := installOutput{
		Plugin:      p.Name,
		Version:     tag,
		Verified:    catalog.IsVerified(p, a.cfg.Install.VerifiedAuthor),
		DownloadURL: catalog.DownloadURL(p, tag),
		InstallURL:  catalog.InstallURL(p, a.cfg.Install.Scheme, tag),
	}
	if tag == "" {
		result.Version = "latest"
		result.DownloadURL = catalog.LatestDownloadURL(p)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if open {
		proceed := yes
		if !proceed {
			if !a.isTTY() {
				return usageError("--open needs an interactive terminal to confirm; pass --yes to skip confirmation")
			}
			if !result.Verified {
				fmt.Fprintf(errOut, "Warning: %s is not published by %s. Only install plugins you trust.\n",
					p.Name, a.cfg.Install.VerifiedAuthor)
			}
			answer := Confirm(errOut, a.stdin(), fmt.Sprintf("Install %s (%s) in TREM-Lite?", p.Name, result.Version))
			proceed = answer.Accepted
		}
		if proceed {
			if err = a.openURL(result.InstallURL); err != nil {
				return err
			}
			result.Opened = true
			logger.Info().Ctx(ctx).
				Str("operation", "install").
				Str("plugin", p.Name).
				Str("version", result.Version).
				Bool("verified", result.Verified).
				Msg("install link opened")
		} else {
			fmt.Fprintln(errOut, "Installation cancelled.")
		}
	}

	if a.output != outputTable {
		return renderJSON(out, result)
	}

	tw := newTable(out)
	fmt.Fprintf(tw, "Plugin:\t%s (%s)\n", result.Plugin, result.Version)
	fmt.Fprintf(tw, "Download:\t%s\n", result.DownloadURL)
	fmt.Fprintf(tw, "Install link:\t%s\n", result.InstallURL)
	if result.Opened {
		fmt.Fprintf(tw, "Status:\topened in TREM-Lite\n")
	}
	return tw.Flush()
}

func hasRelease(p catalog.Plugin, tag string) bool {
	for _, r := range p.Repository.Releases.Releases {
		if r.TagName == tag {
			return true
		}
	}
	return false
}
