package main

import (
	"context"
	"io"

	"github.com/eolymp/autosubmit/cmd/informatics"
	"github.com/fatih/color"
)

// progress prints workflow milestones to the console
type progress struct {
	out  io.Writer
	ok   *color.Color
	done *color.Color
}

func newProgress(out io.Writer) *progress {
	return &progress{
		out:  out,
		ok:   color.New(color.FgGreen),
		done: color.New(color.FgGreen, color.Bold),
	}
}

func (p *progress) Authenticated(*informatics.Session) {
	p.ok.Fprintln(p.out, "auth success")
}

func (p *progress) ProblemResolved(ref, problemID string) {
	p.ok.Fprintf(p.out, "ok. problem number: %s\n", problemID)
}

func (p *progress) Submitted(ctx context.Context, receipt *informatics.Receipt) error {
	_, err := p.done.Fprintf(p.out, "Submitted, run_id: %s\n", receipt.Submission)
	return err
}
