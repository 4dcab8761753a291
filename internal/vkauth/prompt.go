package vkauth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrPromptClosed is returned when the prompt input ends before an answer.
var ErrPromptClosed = errors.New("prompt input closed")

// Prompter asks the operator a question and returns the answer.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// TerminalPrompter asks on a writer and reads one line per answer. Input is
// only read while a prompt is waiting and blank lines are skipped.
type TerminalPrompter struct {
	out io.Writer
	in  *bufio.Reader

	mu      sync.Mutex // serializes prompts
	pending chan lineResult
	err     error
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalPrompter reads answers from in and writes questions to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{out: out, in: bufio.NewReader(in)}
}

// Prompt writes the question and waits for one non-blank line of input. A
// read left unfinished by a cancelled prompt answers the next one.
func (p *TerminalPrompter) Prompt(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return "", p.err
	}
	if _, err := fmt.Fprintf(p.out, "%s: ", question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	if p.pending == nil {
		p.pending = make(chan lineResult, 1)
		go p.readLine(p.pending)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil {
			p.err = r.err
			return "", r.err
		}
		return r.line, nil
	}
}

func (p *TerminalPrompter) readLine(out chan<- lineResult) {
	for {
		line, err := p.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			out <- lineResult{line: line}
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrPromptClosed
			}
			out <- lineResult{err: err}
			return
		}
	}
}
