package models

import (
	"strconv"
	"strings"
)

const (
	OutputHasEmptyChangelog = "has_empty_changelog"
	OutputEmptyHeaders      = "empty_headers"
)

// Outputs are the values published for the workflow once a check completes.
// Both values are always published together.
type Outputs struct {
	HasEmptyChangelog bool
	EmptyHeaders      []string
}

// Values returns the outputs as name/value pairs in publishing order
func (o Outputs) Values() [][2]string {
	return [][2]string{
		{OutputHasEmptyChangelog, strconv.FormatBool(o.HasEmptyChangelog)},
		{OutputEmptyHeaders, strings.Join(o.EmptyHeaders, "\n")},
	}
}
