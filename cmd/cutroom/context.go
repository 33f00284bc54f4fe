package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/internal/config"
	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/utils/filename"
)

type commandContext struct {
	backendURL    string
	uploadTimeout time.Duration
	jsonOutput    bool
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// loadConfig fills in the backend settings not given as flags from the
// environment, using the web service's defaults.
func (c *commandContext) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("backend") && flags.Changed("timeout") {
		return nil
	}
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return err
	}
	if !flags.Changed("backend") {
		c.backendURL = cfg.BackendURL
	}
	if !flags.Changed("timeout") {
		c.uploadTimeout = cfg.UploadTimeout
	}
	return nil
}

func (c *commandContext) client() *backend.Client {
	return backend.NewClient(strings.TrimSpace(c.backendURL), backend.WithUploadTimeout(c.uploadTimeout))
}

// coordinator returns an editor for a single command run. Live preview stays
// off, so nothing is requested until the command asks for it.
func (c *commandContext) coordinator(cmd *cobra.Command) *editor.Coordinator {
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	return editor.New(c.client(), editor.Options{Logger: log})
}

// selectSource points coord at path: a file on the processing host when
// local is set, otherwise a file on this machine that is uploaded first.
func (c *commandContext) selectSource(cmd *cobra.Command, coord *editor.Coordinator, path string, local bool) error {
	if local {
		_, err := coord.SelectLocal(cmd.Context(), path)
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.IsDir() {
		return &os.PathError{Op: "upload", Path: path, Err: os.ErrInvalid}
	}

	name := filename.UploadName(filepath.Base(path))
	bar := newUploadBar(cmd.ErrOrStderr(), name, st.Size())
	var onProgress func(backend.Progress)
	if bar != nil {
		onProgress = func(p backend.Progress) { _ = bar.Set(p.Percent) }
	}

	_, err = coord.SelectUpload(cmd.Context(), name, f, st.Size(), onProgress)
	if bar != nil {
		if err == nil {
			_ = bar.Finish()
		} else {
			_ = bar.Exit()
		}
	}
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
