package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-catalog-cache/item"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if m.detail != nil {
		b.WriteString(renderDetail(*m.detail))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("esc back"))
		return b.String()
	}

	b.WriteString(m.renderList())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Catalog")
	if m.stats == nil {
		return title
	}
	summary := fmt.Sprintf("%s items · avg %s", formatCount(m.stats.Total), formatPrice(m.stats.AveragePrice))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", statsStyle.Render(summary))
}

func (m Model) renderList() string {
	if len(m.list.Items) == 0 {
		switch {
		case m.list.Loading:
			return dimStyle.Render("Loading...") + "\n"
		case m.list.SearchQuery != "":
			return dimStyle.Render(fmt.Sprintf("No items match %q", m.list.SearchQuery)) + "\n"
		default:
			return dimStyle.Render("No items") + "\n"
		}
	}

	end := min(m.top+m.visibleRows(), len(m.list.Items))
	var b strings.Builder
	for i := m.top; i < end; i++ {
		it := m.list.Items[i]
		line := fmt.Sprintf("%-8s %-40s %s  %s",
			formatID(it.ID),
			truncate(it.Name, 40),
			categoryStyle.Render(fmt.Sprintf("%-18s", truncate(it.Category, 18))),
			formatItemPrice(it),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	parts := []string{fmt.Sprintf("Showing %d of %s", len(m.list.Items), formatCount(m.list.TotalCount))}
	if m.list.Loading {
		if m.list.IsResetting {
			parts = append(parts, "searching...")
		} else {
			parts = append(parts, "loading more...")
		}
	} else if !m.list.HasMore && len(m.list.Items) > 0 {
		parts = append(parts, "end of list")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	footer := "\n" + dimStyle.Render(strings.Join(parts, " · "))
	if m.lastErr != nil {
		footer += "\n" + errorStyle.Render("error: "+m.lastErr.Error())
	}
	return footer + "\n" + dimStyle.Render(m.keys.helpLine())
}

func renderDetail(it item.Item) string {
	body := fmt.Sprintf("%s\n\nID        %s\nCategory  %s\nPrice     %s",
		titleStyle.Render(it.Name),
		formatID(it.ID),
		it.Category,
		formatItemPrice(it),
	)
	return detailStyle.Render(body)
}

func formatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}

func formatItemPrice(it item.Item) string {
	if !it.HasPrice() {
		return "n/a"
	}
	return formatPrice(it.Price)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + formatCount(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
