package redact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/config"
)

func newTestRedactor() *Redactor {
	return New(config.DefaultConfig())
}

func TestSanitizeCreditCard(t *testing.T) {
	r := newTestRedactor()
	out := r.Sanitize("card number 4111 1111 1111 1111 on file")
	require.Contains(t, out, "[CREDIT-CARD-REDACTED]")
	require.NotContains(t, out, "4111")
}

func TestSanitizeEmail(t *testing.T) {
	r := newTestRedactor()
	out := r.Sanitize("contact jane.doe@example.com for access")
	require.Equal(t, "contact [EMAIL-REDACTED] for access", out)
}

func TestSanitizeNoMatch(t *testing.T) {
	r := newTestRedactor()
	out := r.Sanitize("nothing sensitive here")
	require.Equal(t, "nothing sensitive here", out)
}

func TestSanitizeTreeRecursion(t *testing.T) {
	r := newTestRedactor()
	tree := map[string]any{
		"name": "ssn 123-45-6789",
		"children": []any{
			map[string]any{"value": "email a@b.com"},
		},
	}
	out := r.SanitizeTree(tree).(map[string]any)
	require.Contains(t, out["name"], "[SSN-REDACTED]")
	child := out["children"].([]any)[0].(map[string]any)
	require.Contains(t, child["value"], "[EMAIL-REDACTED]")
}

func TestIsPasswordField(t *testing.T) {
	require.True(t, IsPasswordField("Edit", map[string]string{"name": "Password"}))
	require.True(t, IsPasswordField("Edit", map[string]string{"automation_id": "txtContraseña"}))
	require.False(t, IsPasswordField("Edit", map[string]string{"name": "Username"}))
}

func TestTotalRedactionsAccumulates(t *testing.T) {
	r := newTestRedactor()
	require.EqualValues(t, 0, r.TotalRedactions())
	r.Sanitize("ssn 111-22-3333")
	require.EqualValues(t, 1, r.TotalRedactions())
}
