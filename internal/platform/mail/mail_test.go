package mail

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sender := NewLogSender(logger)
	err := sender.Send(Message{
		To:      "ana@example.com",
		Subject: "Confirmación de Cita Médica",
		Body:    "Hola Ana",
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ana@example.com") {
		t.Errorf("expected recipient in log output, got %s", out)
	}
	if !strings.Contains(out, "Confirmación de Cita Médica") {
		t.Errorf("expected subject in log output, got %s", out)
	}
}

func TestNewSMTPSender(t *testing.T) {
	logger := zerolog.New(bytes.NewBuffer(nil))
	sender := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "clinic",
		Password: "secret",
		From:     "citas@clinica.example.com",
	}, logger)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.from != "citas@clinica.example.com" {
		t.Errorf("unexpected from address %s", sender.from)
	}
}
