package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Admins is the set of chat IDs allowed to manage the catalog and
// receive order notifications.
type Admins map[int64]struct{}

// ParseAdmins parses a comma separated list of numeric chat IDs.
func ParseAdmins(list string) (Admins, error) {
	admins := Admins{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		admins[id] = struct{}{}
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("admin id list %q contains no ids", list)
	}
	return admins, nil
}

func NewAdmins(ids ...int64) Admins {
	admins := make(Admins, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return admins
}

func (a Admins) Contains(chatID int64) bool {
	_, ok := a[chatID]
	return ok
}

// IDs returns the admin chat IDs in ascending order.
func (a Admins) IDs() []int64 {
	ids := make([]int64, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
