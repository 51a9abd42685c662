// Package cgi implements the CGI execution engine: spawn a child process,
// marshal request metadata into environment variables, stream the request
// body in, parse a header block from the child's standard output, and emit
// the resulting response.
package cgi

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/httpserver"
	"github.com/co-async-go/co-async/lib/clog"
	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

// GET-param keys are restricted to [A-Za-z_], header keys to [a-z_] after
// a '-'->'_' remap; parameters and headers whose keys fall outside these
// sets are silently skipped (DESIGN.md's Open Question decision).
var (
	getKeyPattern    = regexp.MustCompile(`^[A-Za-z_]+$`)
	headerKeyPattern = regexp.MustCompile(`^[a-z_]+$`)
)

// Execute runs scriptPath as a CGI script against req, writing the result
// through resp.
func Execute(ctx context.Context, root *fsys.Root, resp *httpserver.Responder, req *httpserver.Request, scriptPath string) error {
	st, err := root.Stat(scriptPath)
	if err != nil || st.IsDirectory() {
		return httpserver.MakeErrorResponse(resp, 404)
	}
	if !st.IsExecutable() {
		return httpserver.MakeErrorResponse(resp, 403)
	}

	stdinR, stdinW, err := root.Pipe()
	if err != nil {
		return httpserver.MakeErrorResponse(resp, 500)
	}
	stdoutR, stdoutW, err := root.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		return httpserver.MakeErrorResponse(resp, 500)
	}

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.Env = buildEnv(req)
	childStdin := os.NewFile(uintptr(stdinR.Release()), "cgi-stdin")
	childStdout := os.NewFile(uintptr(stdoutW.Release()), "cgi-stdout")
	cmd.Stdin = childStdin
	cmd.Stdout = childStdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdinW.Close()
		stdoutR.Close()
		childStdin.Close()
		childStdout.Close()
		return httpserver.MakeErrorResponse(resp, 500)
	}
	// The child inherited its own copies of these fds across fork/exec;
	// the parent's copies must be closed, or the parent's read of stdoutR
	// never sees EOF after the child exits, since the parent would still
	// hold a write end of that pipe.
	childStdin.Close()
	childStdout.Close()

	inStream := stream.New(stream.NewFileChannel(stdinW), false)
	writeErr := writeStdin(inStream, req.Body)
	stdinW.Close()

	outStream := stream.New(stream.NewFileChannel(stdoutR), false)
	headers, status, body, parseErr := readResponse(outStream)
	stdoutR.Close()

	waitErr := cmd.Wait()

	if writeErr != nil {
		clog.Errorf("cgi: writing request body to %s: %v", scriptPath, writeErr)
	}
	if parseErr != nil {
		clog.Errorf("cgi: malformed response header block from %s: %v", scriptPath, parseErr)
		return httpserver.MakeErrorResponse(resp, 500)
	}
	if waitErr != nil {
		clog.Errorf("cgi: %s exited non-zero: %v", scriptPath, waitErr)
		return httpserver.MakeErrorResponse(resp, 500)
	}

	return emit(resp, status, headers, body)
}

// writeStdin writes body to s (the child's stdin, wrapped in a buffered
// stream) and flushes it. The caller closes the underlying descriptor
// afterward so the child observes EOF.
func writeStdin(s *stream.Stream, body []byte) error {
	if len(body) > 0 {
		if err := s.WriteSpan(body); err != nil {
			return err
		}
	}
	return s.Flush()
}

// readResponse reads the header block from s: each non-empty line splits
// at the first ':' into lower(trim(key)) -> trim(value); a blank line ends
// the block; a line with no ':' is a ProtocolError, and a premature EOF
// returns the stream's BrokenPipe error.
// A "status" entry is pulled out of the map if present (default 200), and
// the remainder of s becomes the response body. Taking a *stream.Stream
// rather than the pipe's concrete file handle keeps this parsing logic
// testable against an in-memory channel.
func readResponse(s *stream.Stream) (map[string]string, int, []byte, error) {
	headers := make(map[string]string)
	for {
		line, err := s.ReadLine('\n')
		if err != nil {
			return nil, 0, nil, err
		}
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		k, v, found := strings.Cut(line, ":")
		if !found {
			return nil, 0, nil, sched.New(sched.ProtocolError)
		}
		headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	status := 200
	if raw, ok := headers["status"]; ok {
		delete(headers, "status")
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, 0, nil, sched.New(sched.ProtocolError)
		}
		status = parsed
	}
	body, err := s.ReadAll()
	if err != nil {
		return nil, 0, nil, err
	}
	return headers, status, body, nil
}

func emit(resp *httpserver.Responder, status int, headers map[string]string, body []byte) error {
	out := httpserver.NewResponse(status)
	for k, v := range headers {
		out.Headers.Set(k, v)
	}
	if !out.Headers.Has("Content-Length") {
		out.Headers.Set("Content-Length", strconv.Itoa(len(body)))
	}
	if err := resp.WriteHeader(out); err != nil {
		return err
	}
	if err := resp.WriteBody(body); err != nil {
		return err
	}
	return resp.FinishBody()
}

// buildEnv marshals req into the child's environment: the parent's
// environment plus HTTP_PATH, HTTP_METHOD, HTTP_GET_{key}, and
// HTTP_HEADER_{key}.
func buildEnv(req *httpserver.Request) []string {
	env := append([]string{}, os.Environ()...)
	env = append(env, "HTTP_PATH="+req.URI.Path, "HTTP_METHOD="+req.Method)
	for _, kv := range req.URI.Params {
		if getKeyPattern.MatchString(kv.Key) {
			env = append(env, "HTTP_GET_"+kv.Key+"="+kv.Value)
		}
	}
	for _, k := range req.Headers.Keys() {
		mapped := strings.ReplaceAll(k, "-", "_")
		if headerKeyPattern.MatchString(mapped) {
			env = append(env, "HTTP_HEADER_"+mapped+"="+req.Headers.Get(k))
		}
	}
	return env
}
