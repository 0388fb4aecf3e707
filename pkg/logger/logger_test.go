package logger

import "testing"

type recordingLogger struct {
	entries []string
	last    []any
}

func (r *recordingLogger) record(lvl, msg string, kv []any) {
	r.entries = append(r.entries, lvl+":"+msg)
	r.last = kv
}

func (r *recordingLogger) Log(m string, kv ...any)   { r.record("log", m, kv) }
func (r *recordingLogger) Debug(m string, kv ...any) { r.record("debug", m, kv) }
func (r *recordingLogger) Info(m string, kv ...any)  { r.record("info", m, kv) }
func (r *recordingLogger) Warn(m string, kv ...any)  { r.record("warn", m, kv) }
func (r *recordingLogger) Error(m string, kv ...any) { r.record("error", m, kv) }
func (r *recordingLogger) Fatal(m string, kv ...any) { r.record("fatal", m, kv) }

func TestDispatchAllBackends(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	Init(a, b)
	defer Init()

	Info("[Graph] merged", "facts", 3)
	Log("plain", "k", "v")

	for _, r := range []*recordingLogger{a, b} {
		if len(r.entries) != 2 {
			t.Fatalf("entries got = %v, want 2", r.entries)
		}
		if r.entries[0] != "info:[Graph] merged" || r.entries[1] != "log:plain" {
			t.Fatalf("entries got = %v", r.entries)
		}
		if len(r.last) != 2 || r.last[0] != "k" {
			t.Fatalf("keyvals not forwarded, got %v", r.last)
		}
	}
}

func TestNoBackends(t *testing.T) {
	Init()
	Warn("dropped", "k", 1)
}
