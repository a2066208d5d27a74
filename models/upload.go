// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package models

// AttachmentUpload is one attachment file that must be transferred to
// remote storage. Lifecycle: created when a local attachment item is dirty
// for its file → authorize (may short-circuit with "exists") → bytes
// transferred → register with the returned upload key → item marked clean.
//
// At most one authorized-but-unregistered upload may exist per attachment;
// the background coordinator de-duplicates further attempts by MD5.
type AttachmentUpload struct {
	Library  LibraryIdentifier `json:"library"`
	ItemKey  string            `json:"item_key"`
	Filename string            `json:"filename"`
	MD5      string            `json:"md5"`
	Mtime    int64             `json:"mtime"`
	Size     int64             `json:"size"`

	// UploadKey is the one-time token returned by the authorize call.
	// Empty until the upload has been authorized.
	UploadKey string `json:"upload_key,omitempty"`
}

// UploadAuthorization is the server's answer to an authorize-upload call:
// either the content already exists remotely (matched by hash) and no bytes
// need to move, or a one-time upload target is returned.
type UploadAuthorization struct {
	Exists    bool              `json:"exists"`
	URL       string            `json:"url"`
	UploadKey string            `json:"uploadKey"`
	Params    map[string]string `json:"params"`
}
