// Package termui prints lookups to a terminal.
package termui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vilaca/gh-lookup/internal/domain"
	"github.com/vilaca/gh-lookup/internal/theme"
)

type palette struct {
	primary lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	error   lipgloss.Color
	star    lipgloss.Color
	border  lipgloss.Color
}

var palettes = map[theme.Theme]palette{
	theme.Light: {
		primary: lipgloss.Color("#0066cc"),
		muted:   lipgloss.Color("#666666"),
		text:    lipgloss.Color("#333333"),
		error:   lipgloss.Color("#721c24"),
		star:    lipgloss.Color("#b8a100"),
		border:  lipgloss.Color("#e0e0e0"),
	},
	theme.Dark: {
		primary: lipgloss.Color("#4d9fff"),
		muted:   lipgloss.Color("#b0b0b0"),
		text:    lipgloss.Color("#e0e0e0"),
		error:   lipgloss.Color("#ff6b6b"),
		star:    lipgloss.Color("#ffd966"),
		border:  lipgloss.Color("#404040"),
	},
}

// Printer writes lookup steps as styled terminal cards.
// It implements service.Presenter.
type Printer struct {
	out    io.Writer
	card   lipgloss.Style
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	link   lipgloss.Style
	errMsg lipgloss.Style
	star   lipgloss.Style
}

// NewPrinter creates a printer writing to out in the colours of t.
func NewPrinter(out io.Writer, t theme.Theme) *Printer {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Default]
	}
	r := lipgloss.NewRenderer(out)

	return &Printer{
		out: out,
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		title:  r.NewStyle().Foreground(p.text).Bold(true),
		label:  r.NewStyle().Foreground(p.muted),
		value:  r.NewStyle().Foreground(p.primary).Bold(true),
		link:   r.NewStyle().Foreground(p.primary).Underline(true),
		errMsg: r.NewStyle().Foreground(p.error).Bold(true),
		star:   r.NewStyle().Foreground(p.star),
	}
}

// PresentProfile prints the profile card.
func (p *Printer) PresentProfile(profile domain.Profile) {
	lines := []string{
		p.title.Render(clean(profile.DisplayName())),
		p.label.Render("@" + clean(profile.Login)),
	}
	if profile.HasBio() {
		lines = append(lines, "", clean(profile.Bio))
	}
	lines = append(lines,
		"",
		p.counter("Repositories", profile.PublicRepos)+"  "+
			p.counter("Followers", profile.Followers)+"  "+
			p.counter("Following", profile.Following),
		"",
		p.label.Render("View Profile: ")+p.link.Render(clean(profile.HTMLURL)),
	)

	fmt.Fprintln(p.out, p.card.Render(strings.Join(lines, "\n")))
}

// PresentRepositories prints one line block per repository.
// Nothing is printed for an empty or failed result.
func (p *Printer) PresentRepositories(result domain.RepositoryResult) {
	if !result.OK() || result.Empty() {
		return
	}

	fmt.Fprintln(p.out, p.title.Render(fmt.Sprintf("Latest Repositories (%d)", len(result.Repositories))))
	for _, repo := range result.Repositories {
		language := clean(repo.Language)
		if !repo.HasLanguage() {
			language = "Unknown"
		}

		header := p.value.Render(clean(repo.Name)) + "  " +
			p.label.Render("["+language+"]") + "  " +
			p.star.Render("★ "+strconv.Itoa(repo.StargazersCount))
		lines := []string{header}
		if repo.Description != "" {
			lines = append(lines, "  "+clean(repo.Description))
		}
		lines = append(lines, "  "+p.link.Render(clean(repo.HTMLURL)))

		fmt.Fprintln(p.out, strings.Join(lines, "\n"))
	}
}

// PresentError prints the user-facing message of err.
func (p *Printer) PresentError(err *domain.LookupError) {
	fmt.Fprintln(p.out, p.card.Render(p.errMsg.Render(err.UserMessage())))
}

func (p *Printer) counter(label string, n int) string {
	return p.value.Render(strconv.Itoa(n)) + " " + p.label.Render(label)
}

// clean removes terminal escape sequences and control characters from
// upstream text so it cannot drive the terminal. Newlines are kept.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, ansi.Strip(s))
}
