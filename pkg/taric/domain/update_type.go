// Package domain holds the value types shared by the parsing, validation
// and commit stages.
package domain

import (
	"fmt"
	"strings"
)

// UpdateType is the TARIC update.type code of a record.
type UpdateType int

const (
	UpdateTypeUpdate UpdateType = 1
	UpdateTypeDelete UpdateType = 2
	UpdateTypeCreate UpdateType = 3
)

// ParseUpdateType converts the update.type element text.
func ParseUpdateType(raw string) (UpdateType, error) {
	switch strings.TrimSpace(raw) {
	case "1":
		return UpdateTypeUpdate, nil
	case "2":
		return UpdateTypeDelete, nil
	case "3":
		return UpdateTypeCreate, nil
	}
	return 0, fmt.Errorf("invalid update type %q", raw)
}

func (u UpdateType) String() string {
	switch u {
	case UpdateTypeUpdate:
		return "UPDATE"
	case UpdateTypeDelete:
		return "DELETE"
	case UpdateTypeCreate:
		return "CREATE"
	}
	return fmt.Sprintf("UpdateType(%d)", int(u))
}

// Code returns the numeric form used in XML.
func (u UpdateType) Code() string {
	return fmt.Sprintf("%d", int(u))
}

// UpdateTypeByName is the inverse of String. Unknown names yield 0.
func UpdateTypeByName(name string) UpdateType {
	for _, u := range []UpdateType{UpdateTypeUpdate, UpdateTypeDelete, UpdateTypeCreate} {
		if u.String() == name {
			return u
		}
	}
	return 0
}
