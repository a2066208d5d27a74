package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ObjectiveCharm/bibsync/models"
)

// AuthorizeUpload implements phase one of the attachment upload protocol:
// POST filename/filesize/md5/mtime to the item's file endpoint. A response
// of {"exists":1} means the content is already on the server (matched by
// hash) and no bytes need to move; otherwise the response carries the
// one-time upload target and upload key.
func (h *httpClient) AuthorizeUpload(ctx context.Context, upload models.AttachmentUpload) (models.UploadAuthorization, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("If-None-Match", "*").
		SetFormData(map[string]string{
			"filename": upload.Filename,
			"filesize": strconv.FormatInt(upload.Size, 10),
			"md5":      upload.MD5,
			"mtime":    strconv.FormatInt(upload.Mtime, 10),
		}).
		Post(h.filePath(upload))
	if err != nil {
		return models.UploadAuthorization{}, fmt.Errorf("authorize upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UploadAuthorization{}, err
	}

	var payload struct {
		Exists    int               `json:"exists"`
		URL       string            `json:"url"`
		UploadKey string            `json:"uploadKey"`
		Params    map[string]string `json:"params"`
	}
	if err = json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.UploadAuthorization{}, fmt.Errorf("decode upload authorization: %w", err)
	}

	return models.UploadAuthorization{
		Exists:    payload.Exists == 1,
		URL:       payload.URL,
		UploadKey: payload.UploadKey,
		Params:    payload.Params,
	}, nil
}

// UploadFile implements phase two: a multipart POST of the raw bytes to the
// storage URL returned by AuthorizeUpload, with the authorization params as
// form fields. The long transfer timeout applies, not the metadata one.
func (h *httpClient) UploadFile(ctx context.Context, auth models.UploadAuthorization, file io.Reader, size int64, progress func(sent, total int64)) error {
	body := file
	if progress != nil {
		body = &countingReader{r: file, total: size, report: progress}
	}

	filename := auth.Params["key"]
	if filename == "" {
		filename = "file"
	}

	resp, err := h.transfer.R().
		SetContext(ctx).
		SetFormData(auth.Params).
		SetFileReader("file", filename, body).
		Post(auth.URL)
	if err != nil {
		return fmt.Errorf("upload file request: %w", err)
	}

	return mapHTTPError(resp)
}

// RegisterUpload implements phase three: finalize the transfer server-side
// with the one-time upload key. Safe to re-run; the server treats a
// duplicate registration of the same key as already done.
func (h *httpClient) RegisterUpload(ctx context.Context, upload models.AttachmentUpload, uploadKey string) (int, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("If-None-Match", "*").
		SetFormData(map[string]string{"upload": uploadKey}).
		Post(h.filePath(upload))
	if err != nil {
		return 0, fmt.Errorf("register upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	return lastModifiedVersion(resp), nil
}

func (h *httpClient) filePath(upload models.AttachmentUpload) string {
	return fmt.Sprintf("/%s/items/%s/file", upload.Library.APIPath(), upload.ItemKey)
}

// countingReader reports the running byte count to a progress callback as
// the multipart writer drains it.
type countingReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		c.report(c.sent, c.total)
	}
	return n, err
}
