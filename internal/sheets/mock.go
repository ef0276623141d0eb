package sheets

import (
	"context"
	"sync"
)

// MockWriter records reports instead of publishing them.
type MockWriter struct {
	WriteFunc func(ctx context.Context, report Report) (string, error)
	Reports   []Report
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteReport implements ReportWriter.
func (m *MockWriter) WriteReport(ctx context.Context, report Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return "mock-spreadsheet", nil
}

// Calls returns a copy of the recorded reports.
func (m *MockWriter) Calls() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Report, len(m.Reports))
	copy(out, m.Reports)
	return out
}
