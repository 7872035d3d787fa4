package validation

import (
	"strings"
	"testing"

	"relaylog/pkg/errs"
	"relaylog/pkg/models"
)

func TestApplyDefaults(t *testing.T) {
	SetRules(Rules{DefaultSender: "system"})
	t.Cleanup(func() { SetRules(Rules{}) })

	m := ApplyDefaults(models.Message{Text: "hi"})
	if m.Sender != "system" {
		t.Fatalf("default sender: %q", m.Sender)
	}
	if m.Kind != models.KindMessage {
		t.Fatalf("default kind: %q", m.Kind)
	}
	m = ApplyDefaults(models.Message{Sender: "alice", Kind: models.KindTask, Text: "x"})
	if m.Sender != "alice" || m.Kind != models.KindTask {
		t.Fatalf("explicit fields overwritten: %+v", m)
	}
}

func TestValidateMessageClassified(t *testing.T) {
	SetRules(Rules{MaxTextLen: 8})
	t.Cleanup(func() { SetRules(Rules{}) })

	cases := []struct {
		name string
		msg  models.Message
		want string
	}{
		{"missing sender", models.Message{Text: "x", Kind: models.KindMessage}, "sender"},
		{"missing text", models.Message{Sender: "a", Kind: models.KindMessage}, "text"},
		{"bad kind", models.Message{Sender: "a", Text: "x", Kind: "banana"}, "kind"},
		{"too long", models.Message{Sender: "a", Text: "way too long text", Kind: models.KindMessage}, "exceeds"},
	}
	for _, tc := range cases {
		err := ValidateMessage(tc.msg)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if errs.KindOf(err) != errs.KindMalformed {
			t.Fatalf("%s: kind %v, want malformed", tc.name, errs.KindOf(err))
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: message %q missing %q", tc.name, err.Error(), tc.want)
		}
	}

	if err := ValidateMessage(models.Message{Sender: "a", Text: "ok", Kind: models.KindMessage}); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
}
