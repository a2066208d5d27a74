// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// LibraryType distinguishes the user's personal library from shared group
// libraries. Each library is versioned independently on the server.
type LibraryType string

const (
	// UserLibraryType is the personal library of the authenticated user.
	UserLibraryType LibraryType = "user"

	// GroupLibraryType is a shared library owned by a group.
	GroupLibraryType LibraryType = "group"
)

// LibraryIdentifier uniquely identifies one syncable library: either the
// personal library of a user or a group library. The zero value is not a
// valid identifier; use UserLibrary or GroupLibrary.
type LibraryIdentifier struct {
	Type LibraryType `json:"type"`
	ID   int64       `json:"id"`
}

// UserLibrary returns the identifier of the personal library owned by userID.
func UserLibrary(userID int64) LibraryIdentifier {
	return LibraryIdentifier{Type: UserLibraryType, ID: userID}
}

// GroupLibrary returns the identifier of the group library owned by groupID.
func GroupLibrary(groupID int64) LibraryIdentifier {
	return LibraryIdentifier{Type: GroupLibraryType, ID: groupID}
}

// IsGroup reports whether l refers to a group library.
func (l LibraryIdentifier) IsGroup() bool {
	return l.Type == GroupLibraryType
}

// String returns the compact form used as a store key and log field:
// "u/<id>" for user libraries, "g/<id>" for group libraries.
func (l LibraryIdentifier) String() string {
	if l.IsGroup() {
		return fmt.Sprintf("g/%d", l.ID)
	}
	return fmt.Sprintf("u/%d", l.ID)
}

// APIPath returns the path prefix the remote API uses for this library,
// e.g. "users/42" or "groups/7".
func (l LibraryIdentifier) APIPath() string {
	if l.IsGroup() {
		return fmt.Sprintf("groups/%d", l.ID)
	}
	return fmt.Sprintf("users/%d", l.ID)
}

// ParseLibraryIdentifier parses the compact "u/<id>" / "g/<id>" form
// produced by String. Used when reading library keys back from the store.
func ParseLibraryIdentifier(s string) (LibraryIdentifier, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return LibraryIdentifier{}, fmt.Errorf("invalid library identifier %q", s)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return LibraryIdentifier{}, fmt.Errorf("invalid library identifier %q: %w", s, err)
	}

	switch parts[0] {
	case "u":
		return UserLibrary(id), nil
	case "g":
		return GroupLibrary(id), nil
	default:
		return LibraryIdentifier{}, fmt.Errorf("invalid library identifier %q", s)
	}
}
