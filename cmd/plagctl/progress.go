package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"plagdesk/internal/app"
	"plagdesk/internal/application/submission"
	"plagdesk/internal/domain/check"
)

// errInterrupted is returned when the user leaves the progress view early.
var errInterrupted = errors.New("check interrupted")

// eventBuffer holds more indicator updates than one run can emit, so the
// pipeline's callbacks never block on a slow renderer.
const eventBuffer = 16

type stagesMsg []check.Stage

type doneMsg struct {
	out submission.Outcome
	err error
}

// checkRun connects a Pipeline to a consumer through a buffered channel.
type checkRun struct {
	pipeline *submission.Pipeline
	events   chan tea.Msg
}

// newCheckRun builds the pipeline with its progress callback feeding events.
func newCheckRun(build func(submission.Options) *submission.Pipeline) *checkRun {
	r := &checkRun{events: make(chan tea.Msg, eventBuffer)}
	r.pipeline = build(submission.Options{
		OnProgress: func(stages []check.Stage) {
			select {
			case r.events <- stagesMsg(stages):
			default:
			}
		},
	})
	return r
}

// await runs PROCESSING in the background and posts the outcome as doneMsg.
func (r *checkRun) await(ctx context.Context) {
	go func() {
		out, err := r.pipeline.Await(ctx)
		r.events <- doneMsg{out: out, err: err}
	}()
}

// retry resubmits the retained request in the background.
func (r *checkRun) retry(ctx context.Context) {
	go func() {
		out, err := r.pipeline.Retry(ctx)
		r.events <- doneMsg{out: out, err: err}
	}()
}

func (r *checkRun) next() tea.Cmd {
	return func() tea.Msg { return <-r.events }
}

// progressModel is the interactive stage indicator. After a failure it offers
// a retry of the retained files.
type progressModel struct {
	ctx     context.Context
	run     *checkRun
	spinner spinner.Model
	files   []string
	stages  []check.Stage

	failed  string
	done    bool
	out     submission.Outcome
	err     error
	retries int
}

func newProgressModel(ctx context.Context, run *checkRun, files []string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle
	return progressModel{
		ctx:     ctx,
		run:     run,
		spinner: s,
		files:   files,
		stages:  run.pipeline.Stages(),
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run.next())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.run.pipeline.Close()
			if !m.done && m.failed == "" {
				m.err = errInterrupted
			}
			return m, tea.Quit
		case "r":
			if m.failed == "" {
				return m, nil
			}
			m.failed = ""
			m.retries++
			m.run.retry(m.ctx)
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stagesMsg:
		m.stages = msg
		return m, m.run.next()

	case doneMsg:
		var fe *submission.FailedError
		if errors.As(msg.err, &fe) && !app.IsAuthLoss(msg.err) {
			m.failed = fe.Message
			m.err = msg.err
			return m, m.run.next()
		}
		m.done = true
		m.out, m.err = msg.out, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Checking "+strings.Join(m.files, ", ")) + "\n\n")
	b.WriteString(renderStages(m.stages, m.spinner.View()))
	if m.failed != "" {
		b.WriteString("\n" + errorStyle.Render(m.failed) + "\n")
		b.WriteString(dimStyle.Render("r retry · q quit") + "\n")
	} else if !m.done {
		b.WriteString("\n" + dimStyle.Render("q cancel") + "\n")
	}
	return b.String()
}
