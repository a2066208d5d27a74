package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ObjectiveCharm/bibsync/models"
)

const (
	headerAPIVersion       = "Zotero-API-Version"
	headerLastModified     = "Last-Modified-Version"
	headerUnmodifiedSince  = "If-Unmodified-Since-Version"
	headerWriteToken       = "Zotero-Write-Token"
	apiVersion             = "3"
	defaultRequestTimeout  = 30 * time.Second
	defaultTransferTimeout = 5 * time.Minute
)

// HTTPClientConfig configures the resty-based API client.
type HTTPClientConfig struct {
	BaseURL string
	APIKey  string

	// RequestTimeout bounds metadata requests; TransferTimeout bounds a
	// whole attachment transfer.
	RequestTimeout  time.Duration
	TransferTimeout time.Duration
}

type httpClient struct {
	client   *resty.Client
	transfer *resty.Client
}

// NewHTTPClient constructs a [Client] speaking the remote HTTP API. Two
// resty clients are held: one with the short metadata timeout, one with the
// long transfer timeout for attachment bytes.
func NewHTTPClient(cfg HTTPClientConfig) Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.TransferTimeout <= 0 {
		cfg.TransferTimeout = defaultTransferTimeout
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	auth := "Bearer " + cfg.APIKey

	cli := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Authorization", auth).
		SetHeader(headerAPIVersion, apiVersion)

	transfer := resty.New().
		SetTimeout(cfg.TransferTimeout)

	return &httpClient{client: cli, transfer: transfer}
}

func (h *httpClient) GroupVersions(ctx context.Context, userID int64) (map[int64]int, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("format", "versions").
		Get(fmt.Sprintf("/users/%d/groups", userID))
	if err != nil {
		return nil, fmt.Errorf("group versions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var versions map[int64]int
	if err = json.Unmarshal(resp.Body(), &versions); err != nil {
		return nil, fmt.Errorf("decode group versions: %w", err)
	}
	return versions, nil
}

func (h *httpClient) Group(ctx context.Context, groupID int64) (models.Group, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/groups/%d", groupID))
	if err != nil {
		return models.Group{}, fmt.Errorf("group request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Group{}, err
	}

	var payload struct {
		ID      int64 `json:"id"`
		Version int   `json:"version"`
		Data    struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err = json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.Group{}, fmt.Errorf("decode group: %w", err)
	}

	return models.Group{
		ID:      payload.ID,
		Name:    payload.Data.Name,
		Version: payload.Version,
		Data:    json.RawMessage(resp.Body()),
	}, nil
}

func (h *httpClient) Versions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int) (models.KeyVersions, int, error) {
	req := h.client.R().SetContext(ctx)
	if since > 0 {
		req.SetQueryParam("since", strconv.Itoa(since))
	}

	if kind == models.SyncObjectSettings {
		return h.settingsVersions(req, library)
	}

	resp, err := req.
		SetQueryParam("format", "versions").
		Get(h.kindPath(library, kind))
	if err != nil {
		return nil, 0, fmt.Errorf("versions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, 0, err
	}

	var versions models.KeyVersions
	if err = json.Unmarshal(resp.Body(), &versions); err != nil {
		return nil, 0, fmt.Errorf("decode versions: %w", err)
	}
	return versions, lastModifiedVersion(resp), nil
}

// settingsVersions derives a key → version map from the settings payload,
// which is an object keyed by setting name rather than a versions listing.
func (h *httpClient) settingsVersions(req *resty.Request, library models.LibraryIdentifier) (models.KeyVersions, int, error) {
	resp, err := req.Get("/" + library.APIPath() + "/settings")
	if err != nil {
		return nil, 0, fmt.Errorf("settings versions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, 0, err
	}

	var settings map[string]struct {
		Version int `json:"version"`
	}
	if err = json.Unmarshal(resp.Body(), &settings); err != nil {
		return nil, 0, fmt.Errorf("decode settings: %w", err)
	}

	versions := make(models.KeyVersions, len(settings))
	for name, s := range settings {
		versions[name] = s.Version
	}
	return versions, lastModifiedVersion(resp), nil
}

func (h *httpClient) Objects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string) ([]models.ObjectRecord, error) {
	if kind == models.SyncObjectSettings {
		return h.settingsObjects(ctx, library, keys)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam(keyParam(kind), strings.Join(keys, ",")).
		Get(h.objectsPath(library, kind))
	if err != nil {
		return nil, fmt.Errorf("objects request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err = json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode objects: %w", err)
	}

	records := make([]models.ObjectRecord, 0, len(raw))
	for _, body := range raw {
		var head struct {
			Key     string `json:"key"`
			Version int    `json:"version"`
			Data    struct {
				Title string `json:"title"`
			} `json:"data"`
		}
		if err = json.Unmarshal(body, &head); err != nil {
			return nil, fmt.Errorf("decode object head: %w", err)
		}
		records = append(records, models.ObjectRecord{
			Library: library,
			Kind:    kind,
			Key:     head.Key,
			Version: head.Version,
			Data:    body,
			Title:   head.Data.Title,
			State:   models.ObjectSynced,
		})
	}
	return records, nil
}

func (h *httpClient) settingsObjects(ctx context.Context, library models.LibraryIdentifier, keys []string) ([]models.ObjectRecord, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/" + library.APIPath() + "/settings")
	if err != nil {
		return nil, fmt.Errorf("settings request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var settings map[string]json.RawMessage
	if err = json.Unmarshal(resp.Body(), &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	records := make([]models.ObjectRecord, 0, len(keys))
	for name, body := range settings {
		if !wanted[name] {
			continue
		}
		var head struct {
			Version int `json:"version"`
		}
		if err = json.Unmarshal(body, &head); err != nil {
			return nil, fmt.Errorf("decode setting %s: %w", name, err)
		}
		records = append(records, models.ObjectRecord{
			Library: library,
			Kind:    models.SyncObjectSettings,
			Key:     name,
			Version: head.Version,
			Data:    body,
			State:   models.ObjectSynced,
		})
	}
	return records, nil
}

func (h *httpClient) Deletions(ctx context.Context, library models.LibraryIdentifier, since int) (models.Deletions, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("since", strconv.Itoa(since)).
		Get("/" + library.APIPath() + "/deleted")
	if err != nil {
		return models.Deletions{}, fmt.Errorf("deletions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Deletions{}, err
	}

	var deletions models.Deletions
	if err = json.Unmarshal(resp.Body(), &deletions); err != nil {
		return models.Deletions{}, fmt.Errorf("decode deletions: %w", err)
	}
	deletions.Version = lastModifiedVersion(resp)
	return deletions, nil
}

func (h *httpClient) SubmitUpdates(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int, objects []json.RawMessage) (models.UpdatesResponse, error) {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(headerUnmodifiedSince, strconv.Itoa(since))

	if kind == models.SyncObjectSettings {
		return h.submitSettings(req, library, objects)
	}

	resp, err := req.
		SetBody(objects).
		Post(h.objectsPath(library, kind))
	if err != nil {
		return models.UpdatesResponse{}, fmt.Errorf("submit updates request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UpdatesResponse{}, err
	}

	return parseUpdatesResponse(resp)
}

// submitSettings posts settings as a single merged object; the server
// answers 204 with only the new version header, so the caller treats all
// attempted keys as acknowledged when no error is returned.
func (h *httpClient) submitSettings(req *resty.Request, library models.LibraryIdentifier, objects []json.RawMessage) (models.UpdatesResponse, error) {
	merged := make(map[string]json.RawMessage, len(objects))
	for _, body := range objects {
		var one map[string]json.RawMessage
		if err := json.Unmarshal(body, &one); err != nil {
			return models.UpdatesResponse{}, fmt.Errorf("encode settings: %w", err)
		}
		for name, value := range one {
			merged[name] = value
		}
	}

	resp, err := req.
		SetBody(merged).
		Post("/" + library.APIPath() + "/settings")
	if err != nil {
		return models.UpdatesResponse{}, fmt.Errorf("submit settings request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UpdatesResponse{}, err
	}

	return models.UpdatesResponse{NewVersion: lastModifiedVersion(resp)}, nil
}

func (h *httpClient) SubmitDeletions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int, keys []string) (int, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader(headerUnmodifiedSince, strconv.Itoa(since)).
		SetQueryParam(keyParam(kind), strings.Join(keys, ",")).
		Delete(h.objectsPath(library, kind))
	if err != nil {
		return 0, fmt.Errorf("submit deletions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	return lastModifiedVersion(resp), nil
}

func parseUpdatesResponse(resp *resty.Response) (models.UpdatesResponse, error) {
	var payload struct {
		Successful map[string]struct {
			Key string `json:"key"`
		} `json:"successful"`
		Unchanged map[string]string `json:"unchanged"`
		Failed    map[string]struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Key     string `json:"key"`
		} `json:"failed"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.UpdatesResponse{}, fmt.Errorf("decode updates response: %w", err)
	}

	out := models.UpdatesResponse{NewVersion: lastModifiedVersion(resp)}
	for _, s := range payload.Successful {
		out.Successful = append(out.Successful, s.Key)
	}
	for _, key := range payload.Unchanged {
		out.Unchanged = append(out.Unchanged, key)
	}
	for _, f := range payload.Failed {
		out.Failed = append(out.Failed, models.FailedUpdate{Key: f.Key, Code: f.Code, Message: f.Message})
	}
	return out, nil
}

// kindPath is the listing path of a kind ("items/trash" for trash).
func (h *httpClient) kindPath(library models.LibraryIdentifier, kind models.SyncObjectKind) string {
	if kind == models.SyncObjectTrash {
		return "/" + library.APIPath() + "/items/trash"
	}
	return "/" + library.APIPath() + "/" + string(kind)
}

// objectsPath is the path object bodies are fetched from and writes are
// submitted to; trash objects are regular items there.
func (h *httpClient) objectsPath(library models.LibraryIdentifier, kind models.SyncObjectKind) string {
	if kind == models.SyncObjectTrash {
		return "/" + library.APIPath() + "/items"
	}
	return "/" + library.APIPath() + "/" + string(kind)
}

func keyParam(kind models.SyncObjectKind) string {
	switch kind {
	case models.SyncObjectCollections:
		return "collectionKey"
	case models.SyncObjectSearches:
		return "searchKey"
	default:
		return "itemKey"
	}
}

func lastModifiedVersion(resp *resty.Response) int {
	v, err := strconv.Atoi(resp.Header().Get(headerLastModified))
	if err != nil {
		return 0
	}
	return v
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = resp.Status()
	}

	switch {
	case code == 401 || code == 403:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case code == 404:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case code == 409:
		return fmt.Errorf("%w: %s", ErrConflict, body)
	case code == 412:
		return fmt.Errorf("%w: %s", ErrPreconditionFailed, body)
	case code >= 500:
		return fmt.Errorf("%w: http %d: %s", ErrServerUnavailable, code, body)
	default:
		return fmt.Errorf("http %d: %s", code, body)
	}
}
