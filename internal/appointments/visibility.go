package appointments

import "strings"

// Panel is the mutually exclusive extra-detail panel a type shows.
type Panel string

const (
	PanelComments  Panel = "comments"
	PanelNotes     Panel = "notes"
	PanelProbation Panel = "probation"
)

// Optional form groups, named by their data-group attribute.
const (
	GroupProbation = "probation"
	GroupNotes     = "notes"
	GroupComments  = "comments"
	GroupRecurring = "recurring"
)

var formGroups = []string{GroupProbation, GroupNotes, GroupComments, GroupRecurring}

// MeetingTypeRadioLimit is the most meeting types rendered as radios.
const MeetingTypeRadioLimit = 3

// FieldVisibility says which groups of the appointment form are shown.
type FieldVisibility struct {
	ProbationFields bool
	Notes           bool
	Comments        bool
	Recurring       bool
	EndTimeRequired bool
}

// VisibilityFor returns the form layout for an appointment type.
func VisibilityFor(appointmentType string) FieldVisibility {
	cat := CategoryOf(appointmentType)
	video := IsVideoLink(appointmentType)
	notes := cat == CategoryCourt || cat == CategoryProbation
	return FieldVisibility{
		ProbationFields: cat == CategoryProbation,
		Notes:           notes,
		Comments:        !notes,
		Recurring:       !video,
		EndTimeRequired: video,
	}
}

// Panel classifies the visibility into exactly one panel.
func (v FieldVisibility) Panel() Panel {
	switch {
	case v.ProbationFields:
		return PanelProbation
	case v.Notes:
		return PanelNotes
	default:
		return PanelComments
	}
}

// Shows reports whether the optional form group is part of the layout.
func (v FieldVisibility) Shows(group string) bool {
	switch group {
	case GroupProbation:
		return v.ProbationFields
	case GroupNotes:
		return v.Notes
	case GroupComments:
		return v.Comments
	case GroupRecurring:
		return v.Recurring
	}
	return false
}

// Groups lists the optional form groups shown, space separated.
func (v FieldVisibility) Groups() string {
	var shown []string
	for _, g := range formGroups {
		if v.Shows(g) {
			shown = append(shown, g)
		}
	}
	return strings.Join(shown, " ")
}

// MeetingTypesAsRadios reports whether n meeting types fit as radios rather
// than a dropdown.
func MeetingTypesAsRadios(n int) bool {
	return n <= MeetingTypeRadioLimit
}
