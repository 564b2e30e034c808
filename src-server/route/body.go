package route

import (
	"net/http"
	"time"

	"banquet/src-server/rsvp"
	"banquet/src-server/store"
	"banquet/src-server/utils"
)

// request/response bodies shared by the guest and admin surfaces

type CompanionBody struct {
	Name        string   `json:"name"`
	IsMinor     bool     `json:"isMinor"`
	AllergyTags []string `json:"allergyTags,omitempty"`
}

type RsvpReqBody struct {
	Attending *bool `json:"attending"`

	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`

	AllergyTags *[]string `json:"allergyTags,omitempty"`
	// legacy comma-joined form still sent by stale clients
	Allergies *string `json:"allergies,omitempty"`

	Companions *[]CompanionBody `json:"companions,omitempty"`
}

// ToProposal maps the wire body onto engine semantics: an omitted JSON
// key stays a nil pointer ("leave unchanged"), an explicit empty value
// clears.
func (b RsvpReqBody) ToProposal() rsvp.Proposal {
	proposal := rsvp.Proposal{
		Email: b.Email,
		Phone: b.Phone,
		Notes: b.Notes,
	}
	if b.Attending != nil {
		proposal.Attending = *b.Attending
	}

	switch {
	case b.AllergyTags != nil:
		proposal.AllergyTags = b.AllergyTags
	case b.Allergies != nil:
		tags := rsvp.ParseTags(*b.Allergies)
		if tags == nil {
			tags = []string{}
		}
		proposal.AllergyTags = &tags
	}

	if b.Companions != nil {
		companions := make([]rsvp.CompanionInput, 0, len(*b.Companions))
		for _, c := range *b.Companions {
			companions = append(companions, rsvp.CompanionInput{
				Name:        utils.CleanupName(c.Name),
				IsMinor:     c.IsMinor,
				AllergyTags: c.AllergyTags,
			})
		}
		proposal.Companions = &companions
	}
	return proposal
}

type GuestRespBody struct {
	ID            string          `json:"id"`
	GuestCode     string          `json:"guestCode"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Language      string          `json:"language,omitempty"`
	Attendance    string          `json:"attendance"`
	MaxCompanions int             `json:"maxCompanions"`
	Companions    []CompanionBody `json:"companions"`
	AllergyTags   []string        `json:"allergyTags"`
	Notes         string          `json:"notes,omitempty"`
	Adults        int             `json:"adults"`
	Minors        int             `json:"minors"`
}

func toGuestRespBody(guest store.FullGuest) GuestRespBody {
	companions := make([]CompanionBody, 0, len(guest.Companions))
	for _, c := range guest.Companions {
		companions = append(companions, CompanionBody{
			Name:        c.Name,
			IsMinor:     c.IsMinor,
			AllergyTags: c.AllergyTags,
		})
	}
	adults, minors := guest.Headcount()
	return GuestRespBody{
		ID:            guest.ID,
		GuestCode:     guest.GuestCode,
		FullName:      guest.FullName,
		Email:         guest.Contact.Email,
		Phone:         guest.Contact.Phone,
		Language:      guest.Language,
		Attendance:    string(guest.Attendance),
		MaxCompanions: guest.MaxCompanions,
		Companions:    companions,
		AllergyTags:   emptyIfNil(guest.AllergyTags),
		Notes:         guest.Notes,
		Adults:        adults,
		Minors:        minors,
	}
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// deadlineOpen writes the refusal itself when submissions have closed.
func deadlineOpen(as *utils.AppState, w http.ResponseWriter) bool {
	if time.Now().After(as.Config.GetRsvpDeadline()) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("The RSVP deadline has passed"))
		return false
	}
	return true
}
