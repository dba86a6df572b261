package personal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
)

// ContactsReader lists a prisoner's phone numbers and email addresses.
type ContactsReader interface {
	GetContacts(ctx context.Context, prisonerNumber string) ([]prisonapi.Contact, error)
}

// HistoryReader lists audit events recorded against a prisoner.
type HistoryReader interface {
	QueryEvents(ctx context.Context, filter compliance.AuditFilter) ([]compliance.AuditEvent, error)
}

const historyLimit = 10

var actionText = map[compliance.AuditAction]string{
	compliance.ActionAppointmentCreated:    "Appointment added",
	compliance.ActionAppointmentAmended:    "Appointment changed",
	compliance.ActionVideoLinkBooked:       "Video link booked",
	compliance.ActionVideoLinkAmended:      "Video link changed",
	compliance.ActionMovementSlipViewed:    "Movement slip printed",
	compliance.ActionPersonalDetailUpdated: "Personal detail changed",
	compliance.ActionContactAdded:          "Contact added",
}

// HistoryRow is one recent change to the prisoner's record.
type HistoryRow struct {
	When        time.Time
	Who         string
	Description string
}

// OverviewRow is one editable detail with a link to its edit page.
type OverviewRow struct {
	Label   string
	Value   string
	Suffix  string
	EditURL string
}

// OverviewPage is the view model of the personal details summary.
type OverviewPage struct {
	Prisoner prisonapi.Prisoner
	Rows     []OverviewRow
	Phones   []string
	Emails   []string
	History  []HistoryRow
	Notice   string
}

// Overview serves GET /prisoner/{prisonerNumber}/personal, listing the
// current value of every route that has one and, when history is set, the
// latest audited changes.
func (b *Builder) Overview(contacts ContactsReader, history HistoryReader, routes []EditRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		prisoner, ok := b.prisoner(w, r)
		if !ok {
			return
		}
		msg, _, err := b.flash.ReadRequest(ctx, tenancy.Username(ctx), r.URL.Query())
		if err != nil {
			b.logger.Warn("failed to read flash", "error", err)
		}

		page := OverviewPage{Prisoner: *prisoner, Notice: msg.Notice}
		base := overviewPath(prisoner.PrisonerNumber) + "/"
		for _, route := range routes {
			if route.Meta.Action == compliance.ActionContactAdded {
				continue
			}
			value, err := route.Get(ctx, prisoner.PrisonerNumber)
			if err != nil {
				b.fail(w, r, "failed to read "+route.Meta.Name, err)
				return
			}
			page.Rows = append(page.Rows, OverviewRow{
				Label:   route.Meta.Label,
				Value:   value,
				Suffix:  route.Meta.Suffix,
				EditURL: base + route.Path,
			})
		}

		list, err := contacts.GetContacts(ctx, prisoner.PrisonerNumber)
		if err != nil {
			b.fail(w, r, "failed to read contacts", err)
			return
		}
		for _, c := range list {
			switch c.Type {
			case prisonapi.ContactTypePhone:
				page.Phones = append(page.Phones, c.Value)
			case prisonapi.ContactTypeEmail:
				page.Emails = append(page.Emails, c.Value)
			}
		}
		if history != nil {
			page.History = b.history(ctx, history, prisoner.PrisonerNumber, routes)
		}
		b.renderer.Render(w, http.StatusOK, PageOverview, page)
	}
}

// history is best effort; a failed query leaves the section empty.
func (b *Builder) history(ctx context.Context, history HistoryReader, pn string, routes []EditRoute) []HistoryRow {
	events, err := history.QueryEvents(ctx, compliance.AuditFilter{Subject: pn, Limit: historyLimit})
	if err != nil {
		b.logger.Warn("failed to read audit history", "error", err, "prisoner_number", pn)
		return nil
	}
	labels := make(map[string]string, len(routes))
	for _, route := range routes {
		labels[route.Meta.Name] = route.Meta.Label
	}

	rows := make([]HistoryRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, HistoryRow{When: e.CreatedAt, Who: e.Who, Description: describeEvent(e, labels)})
	}
	return rows
}

func describeEvent(e compliance.AuditEvent, labels map[string]string) string {
	var details struct {
		Field string `json:"field"`
	}
	if len(e.Details) > 0 {
		_ = json.Unmarshal(e.Details, &details)
	}
	if label, ok := labels[details.Field]; ok {
		switch e.Action {
		case compliance.ActionPersonalDetailUpdated:
			return label + " changed"
		case compliance.ActionContactAdded:
			return label + " added"
		}
	}
	if text, ok := actionText[e.Action]; ok {
		return text
	}
	return string(e.Action)
}
