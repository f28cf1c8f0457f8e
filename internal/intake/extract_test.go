package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractPayloadsCSVAttachment(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample_import.eml"))
	if err != nil {
		t.Fatal(err)
	}

	payloads, subject, text, attachments, err := ExtractPayloads(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Application import for this week" {
		t.Fatalf("subject=%q", subject)
	}
	if !strings.Contains(text, "this week's applications") {
		t.Fatalf("text=%q", text)
	}
	if len(attachments) != 1 || attachments[0] != "applications.csv" {
		t.Fatalf("attachments=%v", attachments)
	}
	if len(payloads) != 1 {
		t.Fatalf("payloads=%d", len(payloads))
	}
	if payloads[0].Origin != "applications.csv" {
		t.Fatalf("origin=%q", payloads[0].Origin)
	}
	if !strings.HasPrefix(payloads[0].Text, "Name,Phone,Carrier") {
		t.Fatalf("payload text=%q", payloads[0].Text)
	}
}

func TestExtractPayloadsHTMLBody(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"From: a@example.com",
		"To: b@example.com",
		"Subject: clients",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset=utf-8`,
		"",
		"<html><body><table><tr><th>Name</th><th>Carrier</th></tr><tr><td>John</td><td>Americo</td></tr></table></body></html>",
	}, "\r\n"))

	payloads, _, _, _, err := ExtractPayloads(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 1 || payloads[0].Origin != "html_body" {
		t.Fatalf("payloads=%+v", payloads)
	}
}

func TestExtractPayloadsTextBodyFallback(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"From: a@example.com",
		"To: b@example.com",
		"Subject: clients",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset=utf-8`,
		"",
		"Name,Carrier",
		"John,Americo",
	}, "\r\n"))

	payloads, _, _, _, err := ExtractPayloads(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 1 || payloads[0].Origin != "text_body" {
		t.Fatalf("payloads=%+v", payloads)
	}
}
