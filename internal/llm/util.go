package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// Models often wrap JSON in ```json ... ``` blocks even when asked not to.
func CleanJSONBlock(text string) string {
	return cleanFence(text, "json")
}

// CleanHTMLBlock removes ```html ... ``` wrappers from HTML responses.
func CleanHTMLBlock(text string) string {
	return cleanFence(text, "html")
}

func cleanFence(text, lang string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if strings.HasPrefix(strings.ToLower(text), lang) {
		text = text[len(lang):]
	} else if idx := strings.Index(text, "\n"); idx >= 0 {
		// Skip another language identifier on the fence line
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[<") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
