package httpserver

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/lib/clog"
	"github.com/co-async-go/co-async/lib/htmlenc"
	"github.com/co-async-go/co-async/lib/urlenc"
)

// CGIExecutor runs a CGI script; callers supply a closure over cgi.Execute
// with its context and fsys.Root already bound. ServePath takes one as a
// parameter instead of importing package cgi directly, to avoid
// httpserver<->cgi depending on each other's Request/Responder types.
type CGIExecutor func(resp *Responder, req *Request, scriptPath string) error

// ServeFile stats the path (404 if missing or a directory, 403 if
// unreadable) and responds 200 with a Content-Type guessed from the
// extension. The body is streamed from the open file in fixed-size chunks,
// so memory use is independent of the file's size.
func ServeFile(resp *Responder, root *fsys.Root, diskPath string) error {
	st, err := root.Stat(diskPath)
	if err != nil || st.IsDirectory() {
		return MakeErrorResponse(resp, 404)
	}
	if !st.IsReadable() {
		return MakeErrorResponse(resp, 403)
	}
	f, err := root.Open(diskPath, fsys.ReadOnly, 0, 0)
	if err != nil {
		return MakeErrorResponse(resp, 404)
	}
	defer f.Close()

	clog.Debugf("httpserver: serving %s (%s)", diskPath, humanize.IBytes(uint64(st.Size)))

	r := NewResponse(200)
	r.Headers.Set("Content-Type", contentTypeFor(diskPath))
	r.Headers.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	if err := resp.WriteHeader(r); err != nil {
		return err
	}

	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return resp.FinishBody()
		}
		if err := resp.WriteBody(buf[:n]); err != nil {
			return err
		}
	}
}

func contentTypeFor(diskPath string) string {
	ext := path.Ext(diskPath)
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ServeDirectory responds with an HTML listing: a link to the parent and
// one link per entry, skipping "." and "..". Entry names are HTML-encoded
// and entry URLs percent-encoded. Every path through this function blocks
// on its I/O before returning.
func ServeDirectory(ctx context.Context, resp *Responder, root *fsys.Root, urlPath, diskPath string) error {
	walker, err := root.OpenDir(diskPath)
	if err != nil {
		return MakeErrorResponse(resp, 404)
	}
	defer walker.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Files in %s:</h1>", htmlenc.Encode(urlPath))

	parent := parentOf(urlPath)
	fmt.Fprintf(&b, "<a href=\"/%s\">..</a><br>", encodePathSegments(strings.TrimPrefix(parent, "/")))

	for {
		name, ok, err := walker.Next(ctx)
		if err != nil {
			return MakeErrorResponse(resp, 500)
		}
		if !ok {
			break
		}
		if name == "." || name == ".." {
			continue
		}
		entryURL := strings.TrimSuffix(urlPath, "/") + "/" + urlenc.Encode(name)
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a><br>", entryURL, htmlenc.Encode(name))
	}

	body := []byte(b.String())
	r := NewResponse(200)
	r.Headers.Set("Content-Type", "text/html;charset=utf-8")
	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
	if err := resp.WriteHeader(r); err != nil {
		return err
	}
	if err := resp.WriteBody(body); err != nil {
		return err
	}
	return resp.FinishBody()
}

// encodePathSegments percent-encodes each segment of a slash-separated
// path, keeping the separators themselves literal.
func encodePathSegments(p string) string {
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = urlenc.Encode(seg)
	}
	return strings.Join(segs, "/")
}

func parentOf(urlPath string) string {
	trimmed := strings.TrimSuffix(urlPath, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}

// ServePath is the three-way dispatch over a stat of diskPath: directory
// listing, CGI execution for executables, plain file otherwise.
func ServePath(ctx context.Context, resp *Responder, req *Request, root *fsys.Root, urlPath, diskPath string, cgiExec CGIExecutor) error {
	st, err := root.Stat(diskPath)
	if err != nil {
		return MakeErrorResponse(resp, 404)
	}
	switch {
	case st.IsDirectory():
		return ServeDirectory(ctx, resp, root, urlPath, diskPath)
	case st.IsExecutable() && cgiExec != nil:
		return cgiExec(resp, req, diskPath)
	default:
		if !st.IsReadable() {
			return MakeErrorResponse(resp, 403)
		}
		return ServeFile(resp, root, diskPath)
	}
}
