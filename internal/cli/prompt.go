package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"timelog/internal/timeparse"
)

// Prompter reads interactive form input. It is passed explicitly to the
// handlers rather than living in package state.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	now func() time.Time
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, now: time.Now}
}

// Line prints the prompt and reads one trimmed line.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Str prompts for a string. An empty answer returns def; when required
// and there is no default, it re-prompts.
func (p *Prompter) Str(label string, required bool, def string) (string, error) {
	prompt := fmt.Sprintf("  %s: ", label)
	if def != "" {
		prompt = fmt.Sprintf("  %s [%s]: ", label, def)
	}
	for {
		val, err := p.Line(prompt)
		if err != nil {
			return "", err
		}
		if val == "" {
			if def != "" || !required {
				return def, nil
			}
			fmt.Fprintln(p.out, "  This field is required.")
			continue
		}
		return val, nil
	}
}

// YesNo prompts for confirmation; empty answer returns def.
func (p *Prompter) YesNo(label string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	val, err := p.Line(fmt.Sprintf("  %s %s: ", label, hint))
	if err != nil {
		return false, err
	}
	val = strings.ToLower(val)
	if val == "" {
		return def, nil
	}
	return val == "y" || val == "yes", nil
}

// Int prompts for an integer no smaller than min. A default below min
// means there is no default and an answer is required.
func (p *Prompter) Int(label string, def, min int) (int, error) {
	prompt := fmt.Sprintf("  %s: ", label)
	if def >= min {
		prompt = fmt.Sprintf("  %s [%d]: ", label, def)
	}
	for {
		val, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		if val == "" {
			if def >= min {
				return def, nil
			}
			fmt.Fprintln(p.out, "  This field is required.")
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			fmt.Fprintln(p.out, "  Enter a number.")
			continue
		}
		if n < min {
			fmt.Fprintf(p.out, "  Must be at least %d.\n", min)
			continue
		}
		return n, nil
	}
}

// Date prompts for a calendar date ("YYYY-MM-DD", "today", "yesterday",
// "-N"). An empty answer returns def when one is given.
func (p *Prompter) Date(label string, def *time.Time) (time.Time, error) {
	hint := "(YYYY-MM-DD, 'today', 'yesterday', '-N')"
	prompt := fmt.Sprintf("  %s %s: ", label, hint)
	if def != nil {
		prompt = fmt.Sprintf("  %s %s [%s]: ", label, hint, def.Format(time.DateOnly))
	}
	for {
		val, err := p.Line(prompt)
		if err != nil {
			return time.Time{}, err
		}
		if val == "" && def != nil {
			return *def, nil
		}
		parsed, err := timeparse.Date(val, p.now())
		if err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return parsed, nil
	}
}

// Clock prompts for a clock time on the given base date. An empty answer
// returns def (moved to the base date) when one is given.
func (p *Prompter) Clock(label string, base time.Time, def *time.Time) (time.Time, error) {
	prompt := fmt.Sprintf("  %s (e.g. 9:30am): ", label)
	if def != nil {
		prompt = fmt.Sprintf("  %s [%s]: ", label, FormatClock(*def))
	}
	for {
		val, err := p.Line(prompt)
		if err != nil {
			return time.Time{}, err
		}
		if val == "" && def != nil {
			d := *def
			return time.Date(base.Year(), base.Month(), base.Day(),
				d.Hour(), d.Minute(), 0, 0, base.Location()), nil
		}
		parsed, err := timeparse.Clock(val, base)
		if err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return parsed, nil
	}
}
