// Package inject renders per-protocol note indicators into result tables on
// the host page. The page DOM is modeled behind small interfaces so the
// injection logic stays testable and host-agnostic.
package inject

import (
	"context"
	"regexp"
	"strings"

	"github.com/notaspat/notaspat/pkg/core"
)

// protocolRe matches a benefit protocol number: 5 to 11 digits, nothing else.
var protocolRe = regexp.MustCompile(`^\d{5,11}$`)

// View is what gets rendered next to a protocol cell. A nil Note renders
// the add-note affordance instead of note contents.
type View struct {
	Protocol string
	Note     *core.Note
}

// Row is one result-table row on the host page.
type Row interface {
	// Key identifies the row within its page for pending-set tracking.
	Key() string
	// ProtocolText is the raw text of the protocol cell.
	ProtocolText() string
	// Rendered reports whether an indicator is already attached.
	Rendered() bool
	// Attach renders the indicator. Replaces any previous attachment.
	Attach(v View)
	// Detach removes the indicator if present.
	Detach()
}

// Table is one result table.
type Table interface {
	Rows() []Row
}

// Mutation describes a DOM change on the page.
type Mutation struct {
	// FromInjected is true when the mutation was caused by an indicator
	// attach/detach rather than by the host application.
	FromInjected bool
}

// Page is the host page surface the injector works against.
type Page interface {
	// Tables returns the result tables currently present, possibly none.
	Tables() []Table
	// Mutations streams DOM changes until ctx is cancelled.
	Mutations(ctx context.Context) <-chan Mutation
}

// ProtocolFromRow extracts and validates the protocol of a row, reporting
// whether the row carries one.
func ProtocolFromRow(row Row) (string, bool) {
	text := strings.TrimSpace(row.ProtocolText())
	if !protocolRe.MatchString(text) {
		return "", false
	}
	return text, true
}
