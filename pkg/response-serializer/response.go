// Package serializer converts stored responses to and from the HTTP/1.1 wire format.
package serializer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

var errMalformedStatusLine = errors.New("malformed status line")

// ResponseToBytes returns the HTTP/1.1 representation of a response,
// i.e. status line, header block, empty line and body.
func ResponseToBytes(statusCode int, header http.Header, body []byte) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(len(body) + 256)
	fmt.Fprintf(buf, "HTTP/1.1 %03d %s\r\n", statusCode, http.StatusText(statusCode))
	header.Write(buf)
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

// BytesToResponse reads a response written by ResponseToBytes.
// The header block is returned exactly as stored; unlike http.ReadResponse,
// no fields are added or dropped. Everything after the header block is the body.
// The request is set as the request of the returned response and may be nil.
func BytesToResponse(b []byte, req *http.Request) (*http.Response, []byte, error) {
	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(b)))
	line, err := tp.ReadLine()
	if err != nil {
		return nil, nil, fmt.Errorf("read status line: %w", err)
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return nil, nil, fmt.Errorf("%w: %q", errMalformedStatusLine, line)
	}
	statusCode, err := strconv.Atoi(strings.SplitN(status, " ", 2)[0])
	if err != nil || statusCode < 100 || statusCode > 999 {
		return nil, nil, fmt.Errorf("%w: %q", errMalformedStatusLine, line)
	}
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, nil, fmt.Errorf("read stored header: %w", err)
	}
	body, err := io.ReadAll(tp.R)
	if err != nil {
		return nil, nil, fmt.Errorf("read stored body: %w", err)
	}
	res := &http.Response{
		Status:        status,
		StatusCode:    statusCode,
		Proto:         proto,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header(mimeHeader),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	return res, body, nil
}

// HeaderSize returns the length of the header block in wire format.
func HeaderSize(header http.Header) int64 {
	cw := &countingWriter{}
	header.Write(cw)
	return cw.n
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(b []byte) (int, error) {
	w.n += int64(len(b))
	return len(b), nil
}
