package neohub

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.WithField("conn", "ws").WithField("attempt", 2).Warnf("retrying %s", "soon")
	logger.Infoln("plain", "line")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	require.Regexp(t, regexp.MustCompile(`^\[\d{4}-\d\d-\d\d \d\d:\d\d:\d\d\] WARN \[attempt=2, conn=ws\]: retrying soon$`), string(lines[0]))
	require.Regexp(t, regexp.MustCompile(`^\[.+\] INFO: plain line$`), string(lines[1]))
}
