package intake

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"

	"agentdesk/internal"
	"agentdesk/internal/pipeline"
)

// MailPayload is one tabular candidate pulled out of a message. Exactly one
// of Text or XLSX is set.
type MailPayload struct {
	Origin string
	Source internal.ImportSource
	Text   string
	XLSX   []byte
}

// ExtractPayloads pulls every tabular candidate out of a raw MIME message:
// spreadsheet and delimited-text attachments first, then the HTML body if it
// carries a table, then the plain-text body as a last resort. Returns the
// payloads plus subject, body text, and attachment names for detection.
func ExtractPayloads(raw []byte) ([]MailPayload, string, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", "", nil, err
	}

	payloads := make([]MailPayload, 0)
	attachmentNames := make([]string, 0, len(env.Attachments))

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			payloads = append(payloads, MailPayload{
				Origin: filename,
				Source: internal.SourceEmail,
				XLSX:   att.Content,
			})
		case strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".tsv") || strings.HasSuffix(lower, ".txt"):
			payloads = append(payloads, MailPayload{
				Origin: filename,
				Source: internal.SourceEmail,
				Text:   string(att.Content),
			})
		}
	}

	if len(payloads) == 0 && env.HTML != "" && pipeline.LooksLikeHTMLTable(env.HTML) {
		payloads = append(payloads, MailPayload{
			Origin: "html_body",
			Source: internal.SourceEmail,
			Text:   env.HTML,
		})
	}

	if len(payloads) == 0 && env.Text != "" {
		payloads = append(payloads, MailPayload{
			Origin: "text_body",
			Source: internal.SourceEmail,
			Text:   env.Text,
		})
	}

	return payloads, env.GetHeader("Subject"), env.Text, attachmentNames, nil
}
