package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

const (
	userLabel = "You"
	botLabel  = "Assistant"
)

func (m Model) View() string {
	if !m.sized {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	p := m.current()
	name := p.DisplayName()
	if !p.Available() {
		name += " (no key)"
	}
	title := fmt.Sprintf(" %s · %s · temp %.1f · max %d ",
		name, m.currentModel(), m.temperature, m.maxTokens)
	return m.styles.header.Width(m.width).Render(title)
}

func (m Model) footerView() string {
	if m.status != "" {
		return m.styles.notice.Render(" " + m.status)
	}
	help := " enter send · ctrl+p provider · ctrl+o model · ctrl+t/ctrl+y temp · ctrl+e export · ctrl+l clear · ctrl+c quit"
	if m.state == stateStreaming {
		help = " " + m.spin.View() + " thinking · esc cancel · ctrl+c quit"
	}
	return m.styles.help.Render(help)
}

// renderTranscript lays out the conversation: user turns verbatim,
// assistant turns through the markdown renderer, provider errors inline.
func (m Model) renderTranscript() string {
	sess, err := m.store.Get(context.Background(), m.sid)
	if err != nil {
		return m.styles.errText.Render(err.Error())
	}

	var b strings.Builder
	for _, msg := range sess.Messages {
		b.WriteString(m.renderTurn(msg.Role, msg.Content))
		b.WriteString("\n")
	}

	if m.pending != "" || m.state == stateStreaming {
		b.WriteString(m.renderTurn(llm.RoleAssistant, m.pending))
		b.WriteString("\n")
	}

	if m.lastErr != "" {
		b.WriteString(m.styles.errText.Render("✗ " + m.lastErr))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderTurn(role, content string) string {
	label := m.styles.botLabel.Render(botLabel)
	if role == llm.RoleUser {
		label = m.styles.userLabel.Render(userLabel)
	}

	body := content
	if role == llm.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}

	return label + "\n" + body + "\n"
}
