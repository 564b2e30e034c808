package rsvp

import (
	"fmt"
	"strings"
)

type RejectKind string

const (
	REJECT_COMPANION_LIMIT_EXCEEDED = RejectKind("CompanionLimitExceeded")
	REJECT_COMPANION_NAME_REQUIRED  = RejectKind("CompanionNameRequired")
	REJECT_CONTACT_REQUIRED         = RejectKind("ContactRequired")
)

// RejectedChange is a refusal to apply a proposal, not a fault. Channels
// must branch on Kind; each kind implies a different corrective action.
type RejectedChange struct {
	Kind   RejectKind
	Detail string
}

func (r *RejectedChange) Error() string {
	if r.Detail == "" {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
}

type CompanionInput struct {
	Name        string
	IsMinor     bool
	AllergyTags []string
}

// Proposal is one submitted change. A nil pointer field means "leave
// unchanged"; a non-nil empty value means "clear". Companions are never
// patched element-by-element: when the pointer is set, the list replaces
// the current one wholesale.
type Proposal struct {
	Attending   bool
	Email       *string
	Phone       *string
	Notes       *string
	AllergyTags *[]string
	Companions  *[]CompanionInput
}

type Options struct {
	// self-service always mandates resolvable contact info; the assisted
	// channel may waive it when the organizer confirms a decline taken
	// by phone
	RequireContact bool
}

// Reconcile computes the guest's next valid record from a proposed change.
// It is a pure function: no I/O, same inputs always yield the same record
// or the same rejection, and a rejection never leaves a half-updated
// record behind (the zero record is returned instead).
//
// current must be the complete persisted record, companions included. The
// engine cannot detect a partial snapshot; that guarantee belongs to the
// channels.
func Reconcile(current GuestRecord, p Proposal, opts Options) (GuestRecord, error) {
	next := current
	next.Companions = append([]Companion(nil), current.Companions...)
	next.AllergyTags = append([]string(nil), current.AllergyTags...)

	if p.Email != nil {
		next.Contact.Email = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		next.Contact.Phone = NormalizePhone(*p.Phone)
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}

	if !p.Attending {
		// declining purges dependent data but never notes or contact
		next.Attendance = ATTENDANCE_DECLINED
		next.Companions = nil
		next.AllergyTags = nil
		if opts.RequireContact && next.Contact.Empty() {
			return GuestRecord{}, &RejectedChange{Kind: REJECT_CONTACT_REQUIRED}
		}
		return next, nil
	}

	if p.Companions != nil {
		if len(*p.Companions) > current.MaxCompanions {
			return GuestRecord{}, &RejectedChange{
				Kind:   REJECT_COMPANION_LIMIT_EXCEEDED,
				Detail: fmt.Sprintf("%d companions, limit is %d", len(*p.Companions), current.MaxCompanions),
			}
		}
		companions := make([]Companion, 0, len(*p.Companions))
		for _, in := range *p.Companions {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return GuestRecord{}, &RejectedChange{Kind: REJECT_COMPANION_NAME_REQUIRED}
			}
			companions = append(companions, Companion{
				Name:        name,
				IsMinor:     in.IsMinor,
				AllergyTags: NormalizeTags(in.AllergyTags),
			})
		}
		next.Companions = companions
	} else if len(next.Companions) > current.MaxCompanions {
		// a shrunken limit can leave a stale over-cap list behind
		return GuestRecord{}, &RejectedChange{
			Kind:   REJECT_COMPANION_LIMIT_EXCEEDED,
			Detail: fmt.Sprintf("%d companions, limit is %d", len(next.Companions), current.MaxCompanions),
		}
	}
	for _, c := range next.Companions {
		if c.Name == "" {
			return GuestRecord{}, &RejectedChange{Kind: REJECT_COMPANION_NAME_REQUIRED}
		}
	}

	if p.AllergyTags != nil {
		next.AllergyTags = NormalizeTags(*p.AllergyTags)
	} else {
		next.AllergyTags = NormalizeTags(next.AllergyTags)
	}

	next.Attendance = ATTENDANCE_ATTENDING
	if opts.RequireContact && next.Contact.Empty() {
		return GuestRecord{}, &RejectedChange{Kind: REJECT_CONTACT_REQUIRED}
	}
	return next, nil
}
