package ai

import (
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPromptTemplate = `You are a task management assistant. Analyze the user's input and extract one task.
Return ONLY a valid JSON object, without Markdown fences or any text around it.

Today is %s. Resolve relative dates ("tomorrow", "next friday") against today.

JSON structure:
{
  "title": "short task title",
  "description": "details, or an empty string if there are none",
  "due_date": "YYYY-MM-DD if the user mentions a date, otherwise null",
  "priority": 1
}

priority:
1 = normal
2 = important
3 = urgent

If the input cannot be recognized as a task at all (for example random characters), set "title" to "%s".`

func SystemPrompt(today time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, today.Format(dateLayout), Unrecognized)
}

func buildMessages(today time.Time, text string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(today)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}
}
