// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/slukits/gospec"
)

var (
	suiteStyle   = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cancelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	ignoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	infoStyle    = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

// Console prints one line per reported test, indented below its suite,
// followed by a summary line at the end of each suite.  Events of
// suites running concurrently are buffered per suite and run until the
// suite completes so their lines don't interleave.
type Console struct {
	mutex   sync.Mutex
	out     io.Writer
	pending map[string]*consoleSuite

	// Verbose prints infos and markups of each test, not only of
	// failed ones.
	Verbose bool

	// Plain drops colors and font weights.
	Plain bool
}

type consoleSuite struct {
	b      strings.Builder
	status gospec.Status
	start  time.Time
}

// NewConsole returns a console reporter writing to given writer.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, pending: map[string]*consoleSuite{}}
}

func (c *Console) Report(e gospec.Event) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	key := e.RunID + "\x00" + e.Suite
	s, ok := c.pending[key]
	if !ok {
		s = &consoleSuite{start: e.Time}
		c.pending[key] = s
	}
	switch e.Kind {
	case gospec.SuiteStarting:
		fmt.Fprintln(&s.b, c.render(suiteStyle, e.Suite+":"))
	case gospec.TestSucceeded:
		s.status.Succeeded++
		c.line(s, e, passStyle, "✓", c.Verbose)
	case gospec.TestFailed:
		s.status.Failed++
		c.line(s, e, failStyle, "✗", true)
		if e.Err != nil {
			fmt.Fprintln(&s.b, c.render(infoStyle, e.Err.Error()))
		}
	case gospec.TestCanceled:
		s.status.Canceled++
		c.line(s, e, cancelStyle, "!", c.Verbose)
	case gospec.TestPending:
		s.status.Pending++
		c.line(s, e, pendingStyle, "…", c.Verbose)
	case gospec.TestIgnored:
		s.status.Ignored++
		c.line(s, e, ignoreStyle, "-", false)
	case gospec.SuiteAborted:
		s.status.Aborted = true
		fmt.Fprintln(&s.b, c.render(failStyle,
			fmt.Sprintf("  aborted: %v", e.Err)))
		c.flush(key, s, e.Time)
	case gospec.SuiteCompleted:
		c.flush(key, s, e.Time)
	}
}

func (c *Console) line(
	s *consoleSuite, e gospec.Event, st lipgloss.Style, mark string,
	details bool,
) {
	txt := fmt.Sprintf("  %s %s", mark, e.Test)
	if e.Duration > 0 {
		txt += fmt.Sprintf(" (%s)", e.Duration.Round(time.Microsecond))
	}
	fmt.Fprintln(&s.b, c.render(st, txt))
	if !details {
		return
	}
	for _, info := range e.Infos {
		fmt.Fprintln(&s.b, c.render(infoStyle, info))
	}
	for _, m := range e.Markups {
		fmt.Fprintln(&s.b, c.render(infoStyle, m))
	}
}

func (c *Console) render(st lipgloss.Style, txt string) string {
	if c.Plain {
		st = st.UnsetForeground().UnsetBold().UnsetFaint()
	}
	return st.Render(txt)
}

func (c *Console) flush(key string, s *consoleSuite, end time.Time) {
	st := s.status
	summary := fmt.Sprintf(
		"  %d succeeded, %d failed, %d canceled, %d pending, "+
			"%d ignored in %s",
		st.Succeeded, st.Failed, st.Canceled, st.Pending, st.Ignored,
		end.Sub(s.start).Round(time.Microsecond))
	style := passStyle
	if !st.OK() {
		style = failStyle
	}
	fmt.Fprintln(&s.b, c.render(style, summary))
	io.WriteString(c.out, s.b.String())
	delete(c.pending, key)
}
