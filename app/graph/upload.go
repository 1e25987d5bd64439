package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/photoshare/app/models"
)

// maxUploadMemory is how much of a multipart request is buffered in memory;
// the remainder spills to temporary files.
const maxUploadMemory = 32 << 20

var errBadMultipart = errors.New("invalid multipart graphql request")

// parseMultipart decodes a GraphQL multipart request: an "operations" field
// holding the request, a "map" field assigning file parts to variable paths,
// and the file parts themselves. The returned cleanup releases temp files.
func parseMultipart(r *http.Request) (Request, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return Request{}, noop, fmt.Errorf("%w: %w", errBadMultipart, err)
	}
	var opened []io.Closer
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	var req Request
	if err := json.Unmarshal([]byte(r.FormValue("operations")), &req); err != nil {
		cleanup()
		return Request{}, noop, fmt.Errorf("%w: operations: %v", errBadMultipart, err)
	}

	var fileMap map[string][]string
	if raw := r.FormValue("map"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fileMap); err != nil {
			cleanup()
			return Request{}, noop, fmt.Errorf("%w: map: %v", errBadMultipart, err)
		}
	}

	root := map[string]interface{}{"variables": req.Variables}
	if req.Variables == nil {
		root["variables"] = map[string]interface{}{}
	}

	for field, paths := range fileMap {
		files := r.MultipartForm.File[field]
		if len(files) == 0 {
			cleanup()
			return Request{}, noop, fmt.Errorf("%w: missing file part %q", errBadMultipart, field)
		}
		header := files[0]
		for _, path := range paths {
			f, err := header.Open()
			if err != nil {
				cleanup()
				return Request{}, noop, fmt.Errorf("%w: open %q: %v", errBadMultipart, field, err)
			}
			opened = append(opened, f)
			upload := &models.Upload{
				File:     f,
				Filename: header.Filename,
				Size:     header.Size,
				MimeType: header.Header.Get("Content-Type"),
			}
			if err := setPath(root, path, upload); err != nil {
				cleanup()
				return Request{}, noop, err
			}
		}
	}

	req.Variables, _ = root["variables"].(map[string]interface{})
	return req, cleanup, nil
}

// setPath replaces the value at a dotted path such as
// "variables.input.file" or "variables.files.0".
func setPath(root map[string]interface{}, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "variables" {
		return fmt.Errorf("%w: bad path %q", errBadMultipart, path)
	}

	var cur interface{} = root
	for i, part := range parts {
		last := i == len(parts)-1
		switch node := cur.(type) {
		case map[string]interface{}:
			if last {
				node[part] = value
				return nil
			}
			next, ok := node[part]
			if !ok || next == nil {
				return fmt.Errorf("%w: path %q not found", errBadMultipart, path)
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("%w: bad index in %q", errBadMultipart, path)
			}
			if last {
				node[idx] = value
				return nil
			}
			cur = node[idx]
		default:
			return fmt.Errorf("%w: path %q not found", errBadMultipart, path)
		}
	}
	return nil
}
