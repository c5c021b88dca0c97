// Package versions manages calendar snapshots: listing, creating and
// publishing them to crew. State is never patched locally; every mutation
// is followed by a fresh list from the backend.
package versions

import (
	"strconv"
	"strings"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// CreateInput is the create-version form.
type CreateInput struct {
	VersionNumber string `json:"versionNumber" form:"versionNumber" validate:"required,versionnum"`
	Notes         string `json:"notes" form:"notes" validate:"max=1000"`
}

// Page is the view model for the versions page and its fragment.
type Page struct {
	ProjectID  string
	Title      string
	Versions   []backend.Version
	NextNumber string
	Workspace  *backend.Workspace
	Access     *backend.AccessInfo
}

// CompareVersionNumbers compares dot-separated integers. Missing parts
// count as zero, so "1" == "1.0". Non-numeric parts also count as zero.
func CompareVersionNumbers(a, b string) int {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		x, y := part(pa, i), part(pb, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func part(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}

// NextVersionNumber suggests the number for a new version: "1.0" for the
// first, otherwise the highest existing major with its minor bumped.
func NextVersionNumber(versions []backend.Version) string {
	if len(versions) == 0 {
		return "1.0"
	}

	highest := versions[0].VersionNumber
	for _, v := range versions[1:] {
		if CompareVersionNumbers(v.VersionNumber, highest) > 0 {
			highest = v.VersionNumber
		}
	}

	parts := strings.Split(highest, ".")
	major := part(parts, 0)
	minor := part(parts, 1)
	return strconv.Itoa(major) + "." + strconv.Itoa(minor+1)
}
