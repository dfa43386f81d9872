package chat

// ShouldTrigger reports whether the turn that just completed should produce
// a scene image. The turn counter is derived from the message count: one
// turn is a user message plus its assistant reply. The rule is kept exactly
// as the app has always computed it, including its boundary behaviour.
func ShouldTrigger(totalMessageCountAfterTurn, frequency int) bool {
	if frequency <= 0 {
		return false
	}
	turn := totalMessageCountAfterTurn / 2
	return turn%frequency == 0
}

// ContextWindowSize returns how many trailing messages feed the scene
// caption request. Every-turn generation uses just the latest exchange;
// lower frequencies look one exchange further back.
func ContextWindowSize(frequency int) int {
	if frequency == 1 {
		return 2
	}
	return 4
}

// ContextWindow returns the last n messages of the history
func ContextWindow(messages []Message, n int) []Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
