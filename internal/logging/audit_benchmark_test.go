package logging

import "testing"

func BenchmarkAuditLog(b *testing.B) {
	dir := b.TempDir()
	if err := InitAudit(dir); err != nil {
		b.Fatal(err)
	}
	defer CloseAudit()

	event := AuditEvent{
		EventType:   AuditApproved,
		Tool:        "click",
		Approved:    true,
		ResultClass: "success",
		Params:      map[string]interface{}{"target": "Sign In"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Audit(event)
	}
}
