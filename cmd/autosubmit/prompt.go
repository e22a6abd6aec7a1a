package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eolymp/autosubmit/cmd/informatics"
	"golang.org/x/term"
)

// prompter asks for job fields missing in configuration
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.secret = func() (string, error) {
			password, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(password), err
		}
	}

	return p
}

// Complete fills empty fields of the job
func (p *prompter) Complete(job *informatics.Job) (err error) {
	if job.Username == "" {
		if job.Username, err = p.ask("login"); err != nil {
			return err
		}
	}

	if job.Password == "" {
		if job.Password, err = p.askSecret("password"); err != nil {
			return err
		}
	}

	if job.Problem == "" {
		if job.Problem, err = p.ask("problem"); err != nil {
			return err
		}
	}

	if job.Source == "" {
		if job.Source, err = p.ask("file"); err != nil {
			return err
		}
	}

	if job.LanguageID == 0 {
		if job.LanguageID, err = p.askLanguage(); err != nil {
			return err
		}
	}

	return nil
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}

		if line == "" {
			return "", fmt.Errorf("no %s given: %w", label, io.ErrUnexpectedEOF)
		}
	}

	return strings.TrimSpace(line), nil
}

func (p *prompter) askSecret(label string) (string, error) {
	if p.secret == nil {
		return p.ask(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)
	return p.secret()
}

func (p *prompter) askLanguage() (int, error) {
	printLanguages(p.out)

	for {
		answer, err := p.ask("language id")
		if err != nil {
			return 0, err
		}

		id, err := strconv.Atoi(answer)
		if err == nil && id > 0 {
			return id, nil
		}

		fmt.Fprintf(p.out, "%q is not a language id\n", answer)
	}
}

func printLanguages(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, lang := range informatics.Languages() {
		fmt.Fprintf(w, "%d\t%s\n", lang.ID, lang.Name)
	}

	_ = w.Flush()
}
