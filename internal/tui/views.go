package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mosaicfin/reconpilot/internal/model"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.styles.Muted.Render("Loading transactions...")
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderList(),
		m.renderDetail(),
	)
	panel := m.renderAgentPanel()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, panel, footer)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("reconpilot")

	mode := "provider: " + m.agent.ProviderName()
	if m.agent.Simulated() {
		mode += " (simulated)"
	}
	subtitle := m.styles.Subtitle.Render(fmt.Sprintf("%d transactions | %s", len(m.transactions), mode))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

func (m Model) renderList() string {
	width := m.listWidth()

	var b strings.Builder
	b.WriteString(m.styles.PanelTitle.Render("Transactions"))
	b.WriteString("\n")

	for i, txn := range m.transactions {
		status := m.styles.renderStatus(txn.Status)
		if m.width < 80 {
			status = statusGlyph(txn.Status)
		}
		line := fmt.Sprintf("%s  %-22s %10.2f %s  %s",
			txn.Date.Format("2006-01-02"),
			truncate(txn.VendorName, 22),
			txn.Amount,
			txn.Currency,
			status,
		)
		if i == m.cursor {
			line = m.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.transactions) == 0 {
		b.WriteString(m.styles.Muted.Render("No transactions. Run 'reconpilot seed' or import an OFX file."))
	}

	return m.styles.Panel.Width(width).Render(b.String())
}

func (m Model) renderDetail() string {
	width := m.width - m.listWidth() - 6
	if width < 30 {
		width = 30
	}

	txn, ok := m.selected()
	if !ok {
		return m.styles.Panel.Width(width).Render(m.styles.Muted.Render("Nothing selected"))
	}

	var b strings.Builder
	b.WriteString(m.styles.PanelTitle.Render(txn.ID))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Vendor:  %s\n", txn.VendorName))
	b.WriteString(fmt.Sprintf("Invoice: %s\n", txn.InvoiceID))
	b.WriteString(fmt.Sprintf("Amount:  %.2f %s\n", txn.Amount, txn.Currency))
	b.WriteString(fmt.Sprintf("Status:  %s\n", m.styles.renderStatus(txn.Status)))
	if txn.FailureReason != "" {
		b.WriteString(fmt.Sprintf("Reason:  %s\n", m.styles.Error.Render(txn.FailureReason)))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.PanelTitle.Render("Audit Timeline"))
	b.WriteString("\n")

	if len(m.audit) == 0 {
		b.WriteString(m.styles.Muted.Render("No audit entries yet."))
	}
	for i, entry := range m.audit {
		if i >= m.timelineLimit() {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("... %d more", len(m.audit)-i)))
			break
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			m.styles.Muted.Render(entry.Timestamp.Format("15:04:05")),
			m.styles.renderRole(entry.Role),
			entry.Action,
		))
	}

	return m.styles.Panel.Width(width).Render(b.String())
}

func (m Model) renderAgentPanel() string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}

	body := m.panelBody
	if m.busy {
		body = m.spinner.View() + " Working..."
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.PanelTitle.Render(m.panelTitle),
		body,
	)

	return m.styles.Panel.Width(width).Render(content)
}

func (m Model) renderFooter() string {
	hints := []string{
		"[j/k] Navigate",
		"[a] Analyze",
		"[e] Email",
		"[v] Validate",
		"[p] Predict",
		"[r] Auto-pilot",
		"[q] Quit",
	}
	footer := m.styles.Muted.Render(strings.Join(hints, "  "))

	if m.statusLine != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, m.styles.Subtitle.Render(m.statusLine), footer)
	}
	if m.lastError != nil {
		footer = lipgloss.JoinVertical(lipgloss.Left, m.styles.Error.Render("error: "+m.lastError.Error()), footer)
	}

	return footer
}

func (m Model) listWidth() int {
	width := m.width/2 - 2
	if width < 40 {
		width = 40
	}
	return width
}

// timelineLimit caps how many audit entries fit in the detail pane.
func (m Model) timelineLimit() int {
	limit := m.height/2 - 8
	if limit < 5 {
		limit = 5
	}
	return limit
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// statusGlyph is kept for compact layouts where color is unavailable.
func statusGlyph(status model.Status) string {
	switch status {
	case model.StatusFailed:
		return "✗"
	case model.StatusRectifying:
		return "…"
	case model.StatusRectified:
		return "✓"
	default:
		return "·"
	}
}
