package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"plagdesk/internal/application/projections"
	"plagdesk/internal/application/submission"
	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/result"
)

// loadFile reads path for upload. A file over the size limit is not read;
// validation rejects it from its size alone.
func loadFile(path string) (*check.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if info.Size() > check.MaxFileSize {
		return &check.File{Name: name, Size: info.Size()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return check.NewFile(name, data), nil
}

// checkRequest builds the pipeline input. With no --mode, two files mean compare.
func checkRequest(modeFlag string, paths []string) (check.Request, error) {
	mode := check.ModeInternet
	if len(paths) == 2 {
		mode = check.ModeCompare
	}
	if modeFlag != "" {
		m, err := check.ParseMode(modeFlag)
		if err != nil {
			return check.Request{}, err
		}
		mode = m
	}

	req := check.Request{Mode: mode}
	var err error
	if req.File1, err = loadFile(paths[0]); err != nil {
		return check.Request{}, err
	}
	if mode == check.ModeCompare && len(paths) > 1 {
		if req.File2, err = loadFile(paths[1]); err != nil {
			return check.Request{}, err
		}
	}
	return req, nil
}

func (c *cli) checkCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "check FILE [FILE2]",
		Short: "Run a plagiarism check",
		Long: `Check one file against the web (--mode internet) or compare two files
(--mode compare). Files are validated locally before anything is sent.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			req, err := checkRequest(mode, args)
			if err != nil {
				return err
			}
			return c.runCheck(cmd, req)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "internet or compare (default: by file count)")
	return cmd
}

// runCheck validates, runs and renders one check.
func (c *cli) runCheck(cmd *cobra.Command, req check.Request) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	run := newCheckRun(c.app.NewPipeline)
	if err := run.pipeline.Begin(req); err != nil {
		var ve *check.ValidationError
		if errors.As(err, &ve) {
			return errors.New(ve.Message)
		}
		return err
	}

	var (
		outcome submission.Outcome
		err     error
	)
	if c.interactive(out) {
		outcome, err = runInteractive(ctx, cmd.InOrStdin(), out, run, req)
	} else {
		outcome, err = runPlain(ctx, out, run)
	}
	if err != nil {
		return explain(err)
	}

	n := result.Normalize(outcome.Result)
	fmt.Fprint(out, renderResult(projections.ResultDetail{
		Result:     n,
		TopMatches: result.TopMatches(n.Matches, result.DisplayedMatches),
		FromCheck:  true,
	}))
	return nil
}

// interactive reports whether the progress view can take over the terminal.
func (c *cli) interactive(out io.Writer) bool {
	if c.plain {
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func runInteractive(ctx context.Context, in io.Reader, out io.Writer, run *checkRun, req check.Request) (submission.Outcome, error) {
	var files []string
	for _, f := range req.Files() {
		files = append(files, f.Name)
	}
	run.await(ctx)
	final, err := tea.NewProgram(newProgressModel(ctx, run, files),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		run.pipeline.Close()
		return submission.Outcome{}, err
	}
	m := final.(progressModel)
	return m.out, m.err
}

// runPlain prints one line per stage change.
func runPlain(ctx context.Context, out io.Writer, run *checkRun) (submission.Outcome, error) {
	run.await(ctx)
	last := ""
	for msg := range run.events {
		switch msg := msg.(type) {
		case stagesMsg:
			for _, s := range msg {
				if s.Status == check.StageActive && s.Name != last {
					last = s.Name
					fmt.Fprintln(out, dimStyle.Render("… "+s.Name))
				}
			}
		case doneMsg:
			return msg.out, msg.err
		}
	}
	return submission.Outcome{}, errInterrupted
}

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file and show its extracted text preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			f, err := loadFile(args[0])
			if err != nil {
				return err
			}
			if !f.Allowed() {
				return errors.New(check.MsgInvalidFile)
			}
			ack, err := c.app.Gateway.Upload(cmd.Context(), f)
			if err != nil {
				return explain(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, doneStyle.Render(fmt.Sprintf("Uploaded %s as #%s", f.Name, ack.FileID)))
			if ack.Preview != "" {
				fmt.Fprintln(out, dimStyle.Render(ack.Preview))
			}
			return nil
		},
	}
}
