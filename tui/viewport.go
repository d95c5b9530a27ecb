// viewport.go provides a scrollable, wrapping viewport for the chat
// transcript.
package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Viewport is a scrollable text area that word-wraps its content.
type Viewport struct {
	width   int
	height  int
	content []string // lines of content, pre-wrap
	scrollY int      // vertical scroll offset (wrapped line index)
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetContentLines replaces the viewport content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// Render returns the visible portion of the content.
func (v *Viewport) Render() string {
	wrapped := v.wrapped()

	var visible []string
	if v.scrollY < len(wrapped) {
		end := v.scrollY + v.height
		if end > len(wrapped) {
			end = len(wrapped)
		}
		visible = wrapped[v.scrollY:end]
	}

	// Pad to fill viewport height
	for len(visible) < v.height {
		visible = append(visible, "")
	}

	content := strings.Join(visible, "\n")
	if ind := v.scrollIndicator(len(wrapped)); ind != "" {
		return lipgloss.JoinVertical(lipgloss.Left, content, ind)
	}
	return content
}

func (v *Viewport) wrapped() []string {
	if v.width <= 0 {
		return v.content
	}
	var out []string
	for _, line := range v.content {
		for len(line) > v.width {
			out = append(out, line[:v.width])
			line = line[v.width:]
		}
		out = append(out, line)
	}
	return out
}

func (v *Viewport) clampScroll() {
	maxY := v.maxScrollY()
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) maxScrollY() int {
	max := len(v.wrapped()) - v.height
	if max < 0 {
		return 0
	}
	return max
}

func (v *Viewport) scrollIndicator(total int) string {
	if total <= v.height {
		return ""
	}
	pct := 0
	if total > 0 {
		pct = (v.scrollY * 100) / total
	}
	width := v.width - 10
	if width < 0 {
		width = 0
	}
	return StyleDimmed.Render(strings.Repeat("─", width) + " " + strconv.Itoa(pct) + "%")
}
