// Package ui wires the orchestration layer into the interactive
// dashboard and runs the Bubble Tea program.
package ui

import (
	"flag"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"filevault/internal/admin"
	"filevault/internal/cmd/cmdenv"
	"filevault/internal/files"
	"filevault/internal/share"
	"filevault/internal/ui"
	"filevault/internal/upload"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	cf := cmdenv.RegisterFlags(fs)
	downloadDir := fs.String("download-dir", "", "where downloaded files are saved (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := cmdenv.Setup(cf.Overrides())
	if err != nil {
		return err
	}
	// Silence diagnostics while the TUI owns the terminal.
	if cf.LogLevel == nil || *cf.LogLevel == "" {
		env.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir := env.Cfg.DownloadDir
	if *downloadDir != "" {
		dir = *downloadDir
	}

	collection := files.NewCollection(env.Client, env.Log)
	filters := &files.FilterState{}
	reconciler := files.Reconciler{
		Collection: collection,
		Profile:    env.Store,
		Filters:    filters.Get,
	}

	deps := ui.Deps{
		Session:    env.Store,
		Collection: collection,
		Uploader:   upload.NewOrchestrator(env.Client, env.Fs, reconciler, env.Log),
		Shares:     share.NewManager(env.Client),
		Admin:      admin.NewView(env.Client, env.Log),
		Reconciler: reconciler,
		Downloader: files.Downloader{Fs: env.Fs, Dir: dir},
		Filters:    filters,
		Addr:       env.Cfg.Server.Addr,
	}

	p := tea.NewProgram(ui.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
