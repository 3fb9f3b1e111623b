// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/panes"
	"github.com/jeranaias/tradedeck/internal/ui/components"
)

// Fixed chrome rows: ticker strip, tab bar, status bar.
const chromeHeight = 3

// inputHeight is the assistant input area: completion row, input row,
// hint row. Fixed so the transcript never jumps while typing.
const inputHeight = 3

// subplotPaneRows is the height of one indicator subplot.
const subplotPaneRows = 6

// subplotHeight returns the rows consumed by subplots in a pane stack.
// The price pane is always first and takes whatever remains.
func subplotHeight(stack []panes.PaneKind) int {
	n := len(stack)
	if n <= 1 {
		return 0
	}
	return (n - 1) * subplotPaneRows
}

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the full screen: ticker strip, tab bar, the active view,
// and the status bar. Total height must equal a.height exactly.
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	if a.overlay != "" {
		return a.renderOverlayBox(a.overlay)
	}

	ticker := a.ticker.View()
	tabs := a.renderTabs()
	status := a.statusBar.View()

	body := a.height - chromeHeight
	if body < 4 {
		body = 4
	}

	var content string
	switch {
	case a.armOpen:
		content = a.centerInBody(a.armPrompt.View(), body)
	case a.formOpen:
		content = a.centerInBody(a.orderForm.View(), body)
	default:
		switch a.view {
		case ViewDashboard:
			content = a.renderDashboard()
		case ViewChart:
			content = a.renderChartView()
		case ViewAssistant:
			content = a.renderAssistantView(body)
		}
	}

	base := lipgloss.JoinVertical(lipgloss.Left, ticker, tabs, content, status)

	if a.toasts.HasToasts() {
		toastView := components.RenderToasts(a.theme, a.toasts.GetToasts(), a.width-4)
		base = a.overlayBottomRight(base, toastView)
	}

	return base
}

// renderTabs renders the view switcher line.
func (a *App) renderTabs() string {
	views := []View{ViewDashboard, ViewChart, ViewAssistant}
	parts := make([]string, 0, len(views))
	for i, v := range views {
		label := fmt.Sprintf("%d %s", i+1, v.String())
		if v == a.view {
			parts = append(parts, a.theme.TabActive.Render(label))
		} else {
			parts = append(parts, a.theme.Tab.Render(label))
		}
	}
	divider := a.theme.TabDivider.Render("|")
	return strings.Join(parts, divider)
}

// centerInBody places a box in the middle of the content region.
func (a *App) centerInBody(box string, body int) string {
	return lipgloss.Place(a.width, body, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// DASHBOARD VIEW
// =============================================================================

// renderDashboard stacks the account panels in two columns: balances,
// positions, and programs left; orders, rate limits, and the activity
// feed right.
func (a *App) renderDashboard() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.balances.View(),
		a.positions.View(),
		a.programs.View(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		a.orders.View(),
		a.rateLimits.View(),
		a.feed.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// =============================================================================
// CHART VIEW
// =============================================================================

// renderChartView renders the price pane plus any indicator subplots
// the current selection requires, top to bottom.
func (a *App) renderChartView() string {
	parts := []string{a.chart.View()}
	for _, kind := range a.panes.Layout().Panes {
		switch kind {
		case panes.PaneTechnical:
			parts = append(parts, a.renderSubplot(a.panes.ActiveTechnical()))
		case panes.PaneFlow:
			parts = append(parts, a.renderSubplot(a.panes.ActiveFlow()))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSubplot renders one indicator pane: a title row, a sparkline of
// the cached series, and the latest value.
func (a *App) renderSubplot(key string) string {
	if key == "" {
		return ""
	}
	title := a.theme.PaneTitle.Render(key)

	values, ok := a.panes.Series(key)
	if !ok || len(values) == 0 {
		empty := a.theme.PanelEmpty.Render("waiting for data")
		return lipgloss.NewStyle().Height(subplotPaneRows).Render(title + "\n" + empty)
	}

	points := make([]decimal.Decimal, 0, len(values))
	var last decimal.Decimal
	for _, v := range values {
		if !v.OK {
			continue
		}
		points = append(points, v.Value)
		last = v.Value
	}

	sparkWidth := a.width - 14
	if sparkWidth < 10 {
		sparkWidth = 10
	}
	spark := a.theme.ChartIndicator.Render(components.Sparkline(points, sparkWidth))
	lastLabel := a.theme.ChartAxis.Render(" " + last.StringFixed(4))

	return lipgloss.NewStyle().Height(subplotPaneRows).Render(
		title + "\n" + spark + lastLabel)
}

// =============================================================================
// ASSISTANT VIEW
// =============================================================================

// renderAssistantView stacks transcript, input, and completions. The
// transcript viewport is sized in resize(); this only assembles.
func (a *App) renderAssistantView(body int) string {
	transcript := a.transcript.View()
	input := a.renderInputArea()

	got := lipgloss.Height(transcript) + lipgloss.Height(input)
	if got != body {
		transcript = lipgloss.NewStyle().
			Height(body - inputHeight).
			MaxHeight(body - inputHeight).
			Width(a.width).
			Render(transcript)
	}
	return lipgloss.JoinVertical(lipgloss.Left, transcript, input)
}

// renderInputArea renders the three fixed input rows: the completion
// (or spinner) row, the input line, and the hint row.
func (a *App) renderInputArea() string {
	topRow := a.renderCompletionRow()

	inputLine := a.theme.InputPrompt.Render("> ") + a.input.View()

	hint := a.theme.ShortcutDesc.Render("enter send | tab complete | esc cancel | / commands")
	count := len([]rune(a.input.Value()))
	limit := a.input.CharLimit
	countStyle := a.theme.CharCount
	switch {
	case limit > 0 && count*10 >= limit*9:
		countStyle = a.theme.CharCountDanger
	case limit > 0 && count*4 >= limit*3:
		countStyle = a.theme.CharCountWarning
	}
	countStr := countStyle.Render(fmt.Sprintf("%d/%d", count, limit))
	pad := a.width - lipgloss.Width(hint) - lipgloss.Width(countStr) - 2
	if pad < 1 {
		pad = 1
	}
	hintRow := hint + strings.Repeat(" ", pad) + countStr

	area := lipgloss.JoinVertical(lipgloss.Left, topRow, inputLine, hintRow)
	return lipgloss.NewStyle().
		Height(inputHeight).
		MaxHeight(inputHeight).
		Width(a.width).
		Render(area)
}

// renderCompletionRow shows the candidate cycle, the streaming spinner,
// or nothing.
func (a *App) renderCompletionRow() string {
	if a.completions.Active {
		parts := make([]string, 0, len(a.completions.Completions))
		for i, c := range a.completions.Completions {
			display := c.Display
			if display == "" {
				display = c.Value
			}
			if i == a.completions.Selected {
				parts = append(parts, a.theme.TabActive.Render(display))
			} else {
				parts = append(parts, a.theme.Tab.Render(display))
			}
			if len(parts) >= 6 {
				break
			}
		}
		return strings.Join(parts, " ")
	}
	if a.spinner.IsActive() {
		return a.spinner.View()
	}
	return ""
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript rebuilds the viewport content from the conversation.
// Called after every mutation that changes what the transcript shows.
func (a *App) renderTranscript() {
	if len(a.conversation.Messages) == 0 {
		a.transcript.SetContent(a.renderEmptyTranscript())
		return
	}

	parts := make([]string, 0, len(a.conversation.Messages))
	for _, msg := range a.conversation.Messages {
		parts = append(parts, a.renderMessage(msg))
	}
	a.transcript.SetContent(strings.Join(parts, "\n"))

	// Follow the stream; manual scrollback wins once the answer lands.
	if a.currentTaskID != "" {
		a.transcript.GotoBottom()
	}
}

func (a *App) renderMessage(msg *model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return a.renderUserMessage(msg)
	case model.RoleAssistant:
		return a.renderAssistantMessage(msg)
	default:
		return a.theme.SystemBubble.Render(msg.DisplayContent())
	}
}

func (a *App) renderUserMessage(msg *model.Message) string {
	maxWidth := a.width - 8
	if maxWidth < 10 {
		maxWidth = 10
	}
	bubble := a.theme.UserBubble.MaxWidth(maxWidth).Render(msg.DisplayContent())

	marginLeft := a.width - lipgloss.Width(bubble) - 2
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().MarginLeft(marginLeft).MarginBottom(1).Render(bubble)
}

func (a *App) renderAssistantMessage(msg *model.Message) string {
	var parts []string

	for _, entry := range msg.Activity {
		parts = append(parts, a.activityStyle(entry.Kind).Render(
			fmt.Sprintf("[%s] %s", entry.Kind, oneLine(entry.Text))))
	}

	content := msg.DisplayContent()
	switch {
	case msg.IsError:
		parts = append(parts, a.theme.ErrorBox.Render(
			a.theme.ErrorTitle.Render("Error")+"\n"+
				a.theme.ErrorMessage.Render(content)))

	case msg.IsStreaming:
		if content == "" {
			content = "_"
		} else {
			content += a.theme.Spinner.Render("_")
		}
		// No markdown pass mid-stream: half-open fences render badly.
		parts = append(parts, components.ParseCodeBlocks(content, a.width-6))

	default:
		if strings.TrimSpace(content) != "" {
			parts = append(parts, a.renderer.Render(content))
		}
	}

	if msg.Interrupted {
		parts = append(parts, a.theme.InterruptedBanner.Render(
			fmt.Sprintf("Paused at round %d. /continue to resume.", msg.Round)))
	}

	body := strings.Join(parts, "\n")
	return lipgloss.NewStyle().MarginLeft(2).MarginBottom(1).Render(body)
}

func (a *App) activityStyle(kind model.ActivityKind) lipgloss.Style {
	switch kind {
	case model.ActivityToolCall:
		return a.theme.ActivityToolCall
	case model.ActivityToolResult:
		return a.theme.ActivityToolResult
	case model.ActivitySaveSuggestion:
		return a.theme.ActivitySave
	default:
		return a.theme.ActivityReasoning
	}
}

// renderEmptyTranscript shows the short how-to for a new conversation.
func (a *App) renderEmptyTranscript() string {
	var sb strings.Builder
	sb.WriteString(a.theme.WelcomeLogo.Render("tradedeck assistant"))
	sb.WriteString("\n\n")
	sb.WriteString(a.theme.WelcomeInfo.Render("Ask about markets, your positions, or an order idea."))
	sb.WriteString("\n\n")
	tips := []struct{ key, desc string }{
		{"/help", "list commands"},
		{"/mode", "set analysis mode"},
		{"/indicator RSI14", "toggle a chart indicator"},
		{"/continue", "resume a paused answer"},
	}
	for _, tip := range tips {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			a.theme.WelcomeKey.Render(fmt.Sprintf("%-18s", tip.key)),
			a.theme.WelcomePressKey.Render(tip.desc)))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// OVERLAYS
// =============================================================================

// renderOverlayBox replaces the screen with a centered text box (help,
// conversation listing). Any key dismisses it.
func (a *App) renderOverlayBox(text string) string {
	boxWidth := 64
	if boxWidth > a.width-4 {
		boxWidth = a.width - 4
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.PanelFocused.GetBorderTopForeground()).
		Padding(1, 2).
		Width(boxWidth).
		MaxHeight(a.height - 2).
		Render(text + "\n\n" + a.theme.ShortcutDesc.Render("press any key to close"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// overlayBottomRight layers the toast stack over the base view's
// bottom-right corner, above the status bar.
func (a *App) overlayBottomRight(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	startRow := len(baseLines) - len(overlayLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	for i, line := range overlayLines {
		row := startRow + i
		if row >= len(baseLines) || lipgloss.Width(line) == 0 {
			continue
		}
		lineWidth := lipgloss.Width(line)
		cut := a.width - lineWidth - 1
		if cut < 0 {
			cut = 0
		}
		baseLine := baseLines[row]
		if lipgloss.Width(baseLine) > cut {
			baseLine = truncateToWidth(baseLine, cut)
		}
		if pad := cut - lipgloss.Width(baseLine); pad > 0 {
			baseLine += strings.Repeat(" ", pad)
		}
		baseLines[row] = baseLine + line
	}
	return strings.Join(baseLines, "\n")
}

// truncateToWidth cuts a string at a visible-cell boundary.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	current := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if current+w > width {
			break
		}
		sb.WriteRune(r)
		current += w
	}
	return sb.String()
}

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// markdownRenderer wraps glamour for finalized assistant messages. The
// renderer is rebuilt on width changes; glamour has no SetWidth.
type markdownRenderer struct {
	width int
	tr    *glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	r := &markdownRenderer{width: 80}
	r.rebuild()
	return r
}

// SetWidth re-targets the word wrap. No-op when unchanged.
func (r *markdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.rebuild()
}

func (r *markdownRenderer) rebuild() {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		// Keep the previous renderer; Render falls back to plain text
		// when none was ever built.
		return
	}
	r.tr = tr
}

// Render converts markdown to styled terminal output, falling back to
// chroma-highlighted plain text when glamour is unavailable or fails.
func (r *markdownRenderer) Render(text string) string {
	if r.tr == nil {
		return components.ParseCodeBlocks(text, r.width)
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return components.ParseCodeBlocks(text, r.width)
	}
	return strings.TrimRight(out, "\n")
}
