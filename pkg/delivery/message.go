package delivery

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// Result attachment conventions.
const (
	ResultFilename    = "topsis_result.csv"
	ResultContentType = "text/csv"
	ResultBody        = "Your TOPSIS result is attached."
)

// base64 lines are wrapped at the RFC 2045 limit.
const lineLength = 76

// NewResultMessage builds the message that delivers a result CSV. The
// subject is left empty so the mailer's configured subject applies.
func NewResultMessage(to string, csv []byte) interfaces.Message {
	return interfaces.Message{
		To:   to,
		Body: ResultBody,
		Attachments: []interfaces.Attachment{{
			Filename:    ResultFilename,
			ContentType: ResultContentType,
			Data:        csv,
		}},
	}
}

// encodeMessage renders msg as a multipart/mixed RFC 5322 message.
func encodeMessage(from string, msg interfaces.Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ key, value string }{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", oneLine(msg.Subject))},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(from))},
		{"MIME-Version", "1.0"},
		{"Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()})},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.key, h.value)
	}
	buf.WriteString("\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(body)
	if _, err := qp.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAttachment(mw *multipart.Writer, a interfaces.Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := oneLine(a.Filename)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": name})},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > lineLength {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:lineLength]); err != nil {
			return err
		}
		encoded = encoded[lineLength:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
