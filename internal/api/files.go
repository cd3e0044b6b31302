package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// ListFiles fetches the caller's file set narrowed by the given filters.
// The server combines all provided fields with AND semantics.
func (c *Client) ListFiles(ctx context.Context, filters SearchFilters) ([]FileRecord, error) {
	var files []FileRecord
	if err := c.doJSONQuery(ctx, "GET", "/api/files", filters.Values().Encode(), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile is one part of a multipart upload request.
type UploadFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadFiles submits all files in a single multipart request. The server
// validates and deduplicates per file, so a 2xx response may still carry
// per-file errors; that mixed outcome is returned, not an error.
func (c *Client) UploadFiles(ctx context.Context, files []UploadFile, directory string) (UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(mw, files, directory)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, "POST", "/api/files", pr)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return UploadResult{}, err
	}
	defer resp.Body.Close()

	var result UploadResult
	if err := decodeJSON(resp.Body, &result); err != nil {
		return UploadResult{}, err
	}
	return result, nil
}

func writeUploadBody(mw *multipart.Writer, files []UploadFile, directory string) error {
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+escapeQuotes(f.Name)+`"`)
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return err
		}
	}
	if directory != "" {
		if err := mw.WriteField("directory", directory); err != nil {
			return err
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// DownloadFile fetches the raw bytes of a stored file.
func (c *Client) DownloadFile(ctx context.Context, id int64) ([]byte, error) {
	req, err := c.newRequest(ctx, "GET", "/api/files/"+itoa(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// DeleteFile removes one file. A 404 surfaces as *Error with NotFound.
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "DELETE", "/api/files/"+itoa(id), nil, nil)
}

// CreateShare asks the server for a share link on a single file.
// expiresIn is hours from now; zero means no expiration. password may be
// empty for an unprotected link.
func (c *Client) CreateShare(ctx context.Context, fileID int64, password string, expiresIn int) (ShareLink, error) {
	req := map[string]any{}
	if password != "" {
		req["password"] = password
	}
	if expiresIn > 0 {
		req["expires_in"] = expiresIn
	}
	var link ShareLink
	if err := c.doJSON(ctx, "POST", "/api/files/"+itoa(fileID)+"/share", req, &link); err != nil {
		return ShareLink{}, err
	}
	return link, nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
