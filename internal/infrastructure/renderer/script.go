// Package renderer turns compiled broadcasts into spoken script text.
package renderer

import (
	"context"
	"fmt"
	"strings"

	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/ports"
)

// ScriptRenderer is the deterministic template renderer: a pure formatting
// step over the already-ordered broadcast. It is the fallback when no LLM
// is configured and the anchor for structural tests.
type ScriptRenderer struct{}

var _ ports.Renderer = ScriptRenderer{}

// NewScriptRenderer returns the stateless renderer.
func NewScriptRenderer() ScriptRenderer { return ScriptRenderer{} }

// Render writes the broadcast as a flowing spoken script. Section headers
// keep their fixed connectives so ordering is checkable in the output.
func (ScriptRenderer) Render(_ context.Context, broadcast domain.Broadcast) (string, error) {
	var b strings.Builder

	b.WriteString("各位好，欢迎收听个人新闻联播")
	if !broadcast.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "，今天是%s", broadcast.GeneratedAt.Format("2006年1月2日"))
	}
	b.WriteString("。")

	for _, section := range broadcast.Sections {
		b.WriteString(sectionOpening(section.Kind))
		for _, item := range section.Items {
			b.WriteString(itemSentence(item))
		}
	}

	b.WriteString("以上就是今天的全部内容，感谢收听。")
	return b.String(), nil
}

func sectionOpening(kind domain.SectionKind) string {
	if kind == domain.SectionPersonallyRelevant {
		return kind.Title() + "中，"
	}
	return kind.Title() + "方面，"
}

func itemSentence(item domain.NormalizedItem) string {
	switch item.Source {
	case domain.SourceSocial:
		if item.Identity != "" {
			return fmt.Sprintf("%s发文说，%s。", item.Identity, trimPunct(item.Body))
		}
		return trimPunct(item.Body) + "。"
	case domain.SourceMail:
		sentence := "您收到"
		if item.Identity != "" {
			sentence = fmt.Sprintf("%s发来", item.Identity)
		}
		sentence += "一封邮件"
		if item.Headline != "" {
			sentence += fmt.Sprintf("，主题是%s", trimPunct(item.Headline))
		}
		if item.Body != "" {
			sentence += fmt.Sprintf("，%s", trimPunct(item.Body))
		}
		return sentence + "。"
	case domain.SourceCalendar:
		sentence := item.Start.Format("15点04分")
		if item.Headline != "" {
			sentence += fmt.Sprintf("您有日程%s", trimPunct(item.Headline))
		} else {
			sentence += "您有一项日程"
		}
		if item.Location != "" {
			sentence += fmt.Sprintf("，地点在%s", trimPunct(item.Location))
		}
		return sentence + "。"
	case domain.SourceWeather:
		return trimPunct(item.Body) + "。"
	default:
		var parts []string
		if item.Headline != "" {
			parts = append(parts, trimPunct(item.Headline))
		}
		if item.Body != "" {
			parts = append(parts, trimPunct(item.Body))
		}
		sentence := strings.Join(parts, "，")
		if sentence == "" {
			return ""
		}
		if item.Identity != "" {
			sentence = fmt.Sprintf("据%s报道，%s", item.Identity, sentence)
		}
		return sentence + "。"
	}
}

func trimPunct(s string) string {
	return strings.TrimRight(s, "。，.,;；")
}
