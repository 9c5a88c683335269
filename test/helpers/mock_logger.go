package helpers

import "sync"

// LogEntry is one captured log call
type LogEntry struct {
	Level    string
	Message  string
	Metadata map[string]interface{}
}

// MockLogger captures log calls for assertions
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger creates an empty MockLogger
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message, Metadata: metadata})
}

// Entries returns the captured calls at level, or all calls when level is empty
func (l *MockLogger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the messages logged at level
func (l *MockLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries(level) {
		out = append(out, e.Message)
	}
	return out
}
