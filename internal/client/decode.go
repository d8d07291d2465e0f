package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// toUTF8 re-encodes a response body to UTF-8. A charset declared in the
// Content-Type is honoured; invalid byte sequences become U+FFFD.
func toUTF8(body []byte, contentType string) []byte {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := strings.ToLower(strings.TrimSpace(params["charset"])); cs != "" && cs != "utf-8" && cs != "utf8" {
			if enc, err := htmlindex.Get(cs); err == nil {
				if decoded, err := enc.NewDecoder().Bytes(body); err == nil {
					body = decoded
				}
			}
		}
	}
	body = bytes.TrimPrefix(body, utf8BOM)
	return bytes.ToValidUTF8(body, []byte("\uFFFD"))
}

// decodeBody parses a successful response body. An empty body yields nil
// without error. Numbers are kept as json.Number so ids survive unchanged.
func decodeBody(body []byte, contentType, url string) (interface{}, error) {
	text := toUTF8(body, contentType)
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{URL: url, Preview: preview(string(text)), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{URL: url, Preview: preview(string(text)), Err: fmt.Errorf("unexpected data after top-level JSON value")}
	}
	return v, nil
}

// decodeInto re-encodes v and unmarshals it into target.
func decodeInto(v interface{}, target interface{}, url string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &DecodeError{URL: url, Preview: preview(string(raw)), Err: err}
	}
	return nil
}
