package ti4

import (
	"errors"
	"fmt"

	"github.com/ti-assistant/server/internal/catalog"
)

// RejectionKind classifies why a reducer rejected an event, matching the
// error-kind taxonomy of the error handling design.
type RejectionKind string

const (
	RejectionWrongPhase      RejectionKind = "wrong_phase"
	RejectionWrongTurn       RejectionKind = "wrong_turn"
	RejectionUnknownEntity   RejectionKind = "unknown_entity"
	RejectionAlreadyDone     RejectionKind = "already_done"
	RejectionInvalidArgument RejectionKind = "invalid_argument"
	RejectionDomainRule      RejectionKind = "domain_rule"
	RejectionPrerequisite    RejectionKind = "prerequisite"
	RejectionCatalogMissing  RejectionKind = "catalog_missing"
	RejectionExternalFailure RejectionKind = "external_failure"
	RejectionNoOp            RejectionKind = "no_op"
	RejectionInternal        RejectionKind = "internal"
)

// Rejection is returned by the reducer instead of a new state when an event
// cannot be applied. It is never a panic: malformed or out-of-turn input is
// an expected, recoverable outcome.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

var (
	errNoScoredSecrets = &Rejection{Kind: RejectionInvalidArgument, Reason: "no scored secret objectives to elect among"}
	errNoActiveLaws    = &Rejection{Kind: RejectionInvalidArgument, Reason: "no active laws to elect among"}
)

func errAgendaUnknown(id catalog.AgendaID) error {
	return reject(RejectionCatalogMissing, "unknown agenda %q", id)
}

func errUnsupportedElectKind(k catalog.AgendaElectKind) error {
	return reject(RejectionInternal, "unsupported elect kind %q", k)
}

// AsRejection unwraps err into a *Rejection, if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	ok := errors.As(err, &r)
	return r, ok
}
