package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	raw, err := encodeMessage("no-reply@panafact.local", Message{
		To:       "cliente@example.com",
		Subject:  "Factura adjunta",
		HTMLBody: "<p>Hola</p>",
		Attachments: []Attachment{
			{Filename: "factura.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 fake")},
		},
	})
	require.NoError(t, err)

	msg := string(raw)
	require.Contains(t, msg, "To: cliente@example.com")
	require.Contains(t, msg, "Content-Type: multipart/mixed")
	require.Contains(t, msg, "<p>Hola</p>")
	require.Contains(t, msg, `filename="factura.pdf"`)
	require.Contains(t, msg, "Content-Transfer-Encoding: base64")
	require.True(t, strings.HasSuffix(msg, "--"+boundary+"--\r\n"))
}

func TestEncodeMessageRequiresAttachmentFilename(t *testing.T) {
	_, err := encodeMessage("a@b.c", Message{
		To:          "x@y.z",
		HTMLBody:    "<p>.</p>",
		Attachments: []Attachment{{Data: []byte("x")}},
	})
	require.Error(t, err)
}

func TestWrapBase64FoldsLongLines(t *testing.T) {
	wrapped := wrapBase64(strings.Repeat("A", 200))
	for _, line := range strings.Split(wrapped, "\r\n") {
		require.LessOrEqual(t, len(line), 76)
	}
}
