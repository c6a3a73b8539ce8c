package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X fixxer/cmd.version=... -X fixxer/cmd.commit=... -X fixxer/cmd.buildDate=...".
var (
	version   = ""
	commit    = ""
	buildDate = ""
)

type buildDetails struct {
	Version  string
	Commit   string
	Date     string
	Dirty    bool
	Go       string
	Platform string
}

// readBuild fills in whatever ldflags left empty from the embedded VCS stamp.
func readBuild() buildDetails {
	b := buildDetails{
		Version:  version,
		Commit:   commit,
		Date:     buildDate,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if b.Version == "" && info.Main.Version != "" {
			b.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if b.Date == "" {
					b.Date = s.Value
				}
			case "vcs.modified":
				b.Dirty = s.Value == "true"
			}
		}
	}

	if b.Version == "" {
		b.Version = "(devel)"
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return err
			}
			return writeVersion(cmd, readBuild(), short)
		},
	}

	cmd.Flags().Bool("short", false, "Print only the version")

	return cmd
}

func writeVersion(cmd *cobra.Command, b buildDetails, short bool) error {
	if short {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), b.Version)
		return err
	}

	rev := b.Commit
	if b.Dirty {
		rev += " (modified)"
	}

	md := markdown.NewMarkdown(cmd.OutOrStdout())
	md.H2("fixxer " + b.Version)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Build", "Value"},
		Rows: [][]string{
			{"Commit", rev},
			{"Built", b.Date},
			{"Go", b.Go},
			{"Platform", b.Platform},
		},
	})
	return md.Build()
}
