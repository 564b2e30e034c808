package rsvp

type AttendanceType string

const (
	ATTENDANCE_UNDECIDED = AttendanceType("UNDECIDED")
	ATTENDANCE_ATTENDING = AttendanceType("ATTENDING")
	ATTENDANCE_DECLINED  = AttendanceType("DECLINED")
)

type Contact struct {
	Email string
	Phone string
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}

type Companion struct {
	Name        string
	IsMinor     bool
	AllergyTags []string
}

// GuestRecord is the full, authoritative state of one invited party. Only
// a full-detail load may produce one of these; list projections use a
// separate summary type so they can't be fed back into Reconcile.
type GuestRecord struct {
	ID            string
	Contact       Contact
	Attendance    AttendanceType
	MaxCompanions int
	Companions    []Companion
	AllergyTags   []string
	Notes         string
}

// Adults and minors in the resulting party. The titular guest counts as
// one adult while attending.
func (g GuestRecord) Headcount() (adults int, minors int) {
	if g.Attendance != ATTENDANCE_ATTENDING {
		return 0, 0
	}
	adults = 1
	for _, c := range g.Companions {
		if c.IsMinor {
			minors++
		} else {
			adults++
		}
	}
	return adults, minors
}
