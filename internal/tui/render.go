package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"studyroom/internal/chat"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	// 固定样式，避免在 bubbletea 运行时查询终端背景色
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}

// RenderTranscript 渲染对话记录：用户消息原样显示，助手回复按 markdown 渲染
// RenderTranscript renders the conversation. Assistant replies go through Glamour.
func RenderTranscript(messages []chat.Message, width int, theme Theme) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			parts = append(parts, theme.UserStyle.Render("› ")+msg.Content)
		case chat.RoleAssistant:
			parts = append(parts, RenderMarkdown(msg.Content, width))
		}
	}
	return strings.Join(parts, "\n\n")
}

// RenderProgress 绘制任务完成进度条
// RenderProgress draws a done/total bar of the given width.
func RenderProgress(done, total, width int) string {
	if width < 4 {
		width = 4
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
