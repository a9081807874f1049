package main

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/meigma/ustar"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonHeader struct {
	Name     string `json:"name"`
	Typeflag string `json:"typeflag"`
	Size     uint64 `json:"size"`
	UID      uint64 `json:"uid"`
	GID      uint64 `json:"gid"`
	Uname    string `json:"uname,omitempty"`
	Gname    string `json:"gname,omitempty"`
	ModTime  string `json:"mtime"`
	Offset   int64  `json:"offset"`
}

type jsonArchive struct {
	Path        string       `json:"path"`
	Compression string       `json:"compression,omitempty"`
	Digest      string       `json:"digest,omitempty"`
	Size        int          `json:"size"`
	Headers     []jsonHeader `json:"headers"`
	Error       string       `json:"error,omitempty"`
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func printResult(w io.Writer, cfg config, res *result) error {
	if cfg.json {
		return printJSON(w, res)
	}
	return printText(w, res)
}

func printText(w io.Writer, res *result) error {
	if _, err := fmt.Fprintf(w, "%s:\n", res.path); err != nil {
		return err
	}
	for _, h := range res.headers {
		_, err := fmt.Fprintf(w, "%s %-17s %10d %s %s\n",
			typeflag(h.Typeflag), owner(h), h.Size, h.Time().UTC().Format(time.DateTime), h.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, res *result) error {
	doc := jsonArchive{
		Path:    res.path,
		Headers: make([]jsonHeader, 0, len(res.headers)),
	}
	if res.archive != nil {
		doc.Compression = res.archive.Compression.String()
		doc.Digest = res.archive.Digest.String()
		doc.Size = len(res.archive.Data)
	}
	if res.err != nil {
		doc.Error = res.err.Error()
	}
	for _, h := range res.headers {
		doc.Headers = append(doc.Headers, jsonHeader{
			Name:     h.Name,
			Typeflag: typeflag(h.Typeflag),
			Size:     h.Size,
			UID:      h.UID,
			GID:      h.GID,
			Uname:    h.Uname,
			Gname:    h.Gname,
			ModTime:  h.Time().UTC().Format(time.RFC3339),
			Offset:   h.Offset,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// owner formats the owner as uname/gname, falling back to numeric ids.
func owner(h ustar.Header) string {
	user := h.Uname
	if user == "" {
		user = fmt.Sprint(h.UID)
	}
	group := h.Gname
	if group == "" {
		group = fmt.Sprint(h.GID)
	}
	return user + "/" + group
}

func typeflag(b byte) string {
	if b == 0 {
		return "0"
	}
	if b < 0x20 || b > 0x7e {
		return fmt.Sprintf("\\x%02x", b)
	}
	return string(rune(b))
}
