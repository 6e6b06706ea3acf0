package mailer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
)

func newTestMailer(t *testing.T) *Mailer {
	t.Helper()
	m, err := New("noreply@example.com")
	require.NoError(t, err)
	return m
}

func encode(t *testing.T, message domain.MailMessage) []byte {
	t.Helper()
	body, err := json.Marshal(message)
	require.NoError(t, err)
	return body
}

func TestBuild_EmployeeCreated(t *testing.T) {
	m := newTestMailer(t)
	department := "Engineering"

	msg, err := m.Build(encode(t, domain.MailMessage{
		Type: domain.MailTypeEmployeeCreated,
		To:   "john@example.com",
		Data: domain.EmployeeMailData{
			Name:       "John Doe",
			Department: &department,
			DateJoined: "2026-10-15",
		},
	}))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	_, err = msg.WriteTo(buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "john@example.com")
	assert.Contains(t, raw, welcomeSubject)
	assert.Contains(t, raw, "John Doe")
	assert.Contains(t, raw, "Engineering")
	assert.Contains(t, raw, "2026-10-15")
}

func TestBuild_Errors(t *testing.T) {
	m := newTestMailer(t)

	tests := []struct {
		name    string
		body    []byte
		wantErr error
	}{
		{
			name:    "invalid json",
			body:    []byte("{"),
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "invalid recipient",
			body:    encode(t, domain.MailMessage{Type: domain.MailTypeEmployeeCreated, To: "not-an-email"}),
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "unknown type",
			body:    encode(t, domain.MailMessage{Type: "reset_password", To: "john@example.com"}),
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := m.Build(tt.body)
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
