package assistant

import "strings"

// Canned replies for fallback mode. The greeting doubles as a capability
// summary; the default asks for clarification.
const (
	taskBreakdownReply = "To help organize your tasks, try breaking them down into smaller steps. I recommend starting with just 1-3 tasks that are most important today."
	focusReply         = "For better focus, try the Pomodoro technique: 25 minutes of focused work followed by a 5-minute break. Also, minimize distractions by silencing notifications."
	deadlineReply      = "To manage deadlines, try setting earlier personal deadlines with small rewards. Breaking the project into smaller milestones can also help prevent procrastination."
	overwhelmReply     = "When feeling overwhelmed, pause and take a few deep breaths. Try writing everything down that's on your mind, then prioritize only what needs attention today."
	memoryReply        = "To help with memory, try using external systems like calendar alerts, sticky notes, or apps with reminders. Writing things down immediately is also helpful."
	greetingReply      = "Hello! I'm your AI assistant. I can help you with organization, focus, task management, and more. What would you like assistance with today?"
	clarifyReply       = "I understand you need help. Could you share more specific details about what you're looking for assistance with? I can help with organization, focus, breaking down tasks, and managing ADHD challenges."
)

// keywordGroups are checked in order; the first group with a matching
// substring wins. "hello" deliberately comes after the advice groups so that
// "hi, I have a task" gets task advice rather than a greeting.
var keywordGroups = []struct {
	keywords []string
	reply    string
}{
	{[]string{"task", "todo", "to-do", "organize"}, taskBreakdownReply},
	{[]string{"focus", "concentrate", "distract"}, focusReply},
	{[]string{"deadline", "late", "procrastinate"}, deadlineReply},
	{[]string{"overwhelm", "stress", "anxious"}, overwhelmReply},
	{[]string{"forgot", "remember", "memory"}, memoryReply},
	{[]string{"hello", "hi", "hey"}, greetingReply},
}

// Classify maps a user message to a canned reply by case-insensitive
// substring matching. Pure and deterministic.
func Classify(message string) string {
	lowered := strings.ToLower(message)

	for _, group := range keywordGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lowered, keyword) {
				return group.reply
			}
		}
	}

	return clarifyReply
}
