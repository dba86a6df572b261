package personal

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"unicode/utf8"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
)

// Reference domains offered by the select fields.
const (
	DomainNationality = "NAT"
	DomainReligion    = "RELF"
)

const maxDietLength = 1000

// DetailsAPI is the part of the prison API the personal pages use.
type DetailsAPI interface {
	GetPersonalDetails(ctx context.Context, prisonerNumber string) (*prisonapi.PersonalDetails, error)
	UpdatePersonalDetails(ctx context.Context, prisonerNumber string, patch map[string]any) error
	GetContacts(ctx context.Context, prisonerNumber string) ([]prisonapi.Contact, error)
	AddContact(ctx context.Context, prisonerNumber string, contact prisonapi.Contact) (*prisonapi.Contact, error)
}

// DefaultRoutes are the personal details staff can edit.
func DefaultRoutes(api DetailsAPI) []EditRoute {
	return []EditRoute{
		textDetail(api, "nationality", FieldMeta{Name: "nationality", Label: "Nationality", Kind: InputSelect, Domain: DomainNationality},
			"nationality", func(d *prisonapi.PersonalDetails) string { return d.Nationality }, nil),
		textDetail(api, "religion", FieldMeta{Name: "religion", Label: "Religion, faith or belief", Kind: InputSelect, Domain: DomainReligion},
			"religion", func(d *prisonapi.PersonalDetails) string { return d.Religion }, nil),
		numberDetail(api, "height", FieldMeta{Name: "height", Label: "Height", Kind: InputNumber, Suffix: "cm"},
			"heightCentimetres", func(d *prisonapi.PersonalDetails) *int { return d.HeightCm },
			rangeValidator(50, 250, "Enter a height between 50 and 250 centimetres")),
		numberDetail(api, "weight", FieldMeta{Name: "weight", Label: "Weight", Kind: InputNumber, Suffix: "kg"},
			"weightKilograms", func(d *prisonapi.PersonalDetails) *int { return d.WeightKg },
			rangeValidator(12, 300, "Enter a weight between 12 and 300 kilograms")),
		textDetail(api, "diet", FieldMeta{Name: "diet", Label: "Diet and food allergies", Kind: InputTextArea},
			"diet", func(d *prisonapi.PersonalDetails) string { return d.Diet },
			func(v string) string {
				if utf8.RuneCountInString(v) > maxDietLength {
					return "Enter diet using 1,000 characters or less"
				}
				return ""
			}),
		contactRoute(api, "phone-number", FieldMeta{Name: "phoneNumber", Label: "Phone number", Kind: InputPhone, DuplicateNoun: "phone number"},
			prisonapi.ContactTypePhone, validatePhone),
		contactRoute(api, "email-address", FieldMeta{Name: "email", Label: "Email address", Kind: InputEmail, DuplicateNoun: "email address"},
			prisonapi.ContactTypeEmail, validateEmail),
	}
}

func textDetail(api DetailsAPI, path string, meta FieldMeta, key string, read func(*prisonapi.PersonalDetails) string, validate Validator) EditRoute {
	meta.Action = compliance.ActionPersonalDetailUpdated
	return EditRoute{
		Path: path,
		Meta: meta,
		Get: func(ctx context.Context, pn string) (string, error) {
			d, err := api.GetPersonalDetails(ctx, pn)
			if err != nil {
				return "", err
			}
			return read(d), nil
		},
		Set: func(ctx context.Context, pn, value string) error {
			var v any
			if value != "" {
				v = value
			}
			return api.UpdatePersonalDetails(ctx, pn, map[string]any{key: v})
		},
		Validate: validate,
	}
}

func numberDetail(api DetailsAPI, path string, meta FieldMeta, key string, read func(*prisonapi.PersonalDetails) *int, validate Validator) EditRoute {
	meta.Action = compliance.ActionPersonalDetailUpdated
	return EditRoute{
		Path: path,
		Meta: meta,
		Get: func(ctx context.Context, pn string) (string, error) {
			d, err := api.GetPersonalDetails(ctx, pn)
			if err != nil {
				return "", err
			}
			if n := read(d); n != nil {
				return strconv.Itoa(*n), nil
			}
			return "", nil
		},
		Set: func(ctx context.Context, pn, value string) error {
			var v any
			if value != "" {
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("personal: %s: %w", meta.Name, err)
				}
				v = n
			}
			return api.UpdatePersonalDetails(ctx, pn, map[string]any{key: v})
		},
		Validate: validate,
	}
}

// contactRoute adds a new contact; the form always starts empty.
func contactRoute(api DetailsAPI, path string, meta FieldMeta, contactType string, validate Validator) EditRoute {
	meta.Action = compliance.ActionContactAdded
	return EditRoute{
		Path: path,
		Meta: meta,
		Get: func(context.Context, string) (string, error) {
			return "", nil
		},
		Set: func(ctx context.Context, pn, value string) error {
			_, err := api.AddContact(ctx, pn, prisonapi.Contact{Type: contactType, Value: value})
			return err
		},
		Validate: validate,
	}
}

// rangeValidator accepts blank (which clears the value) or an integer in [lo, hi].
func rangeValidator(lo, hi int, message string) Validator {
	return func(v string) string {
		if v == "" {
			return ""
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < lo || n > hi {
			return message
		}
		return ""
	}
}

func validatePhone(v string) string {
	if v == "" {
		return "Enter a phone number"
	}
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '+' || r == '(' || r == ')' || r == '-':
		default:
			return "Enter a phone number, like 01632 960 001 or 07700 900 982"
		}
	}
	if digits < 7 || digits > 15 {
		return "Enter a phone number, like 01632 960 001 or 07700 900 982"
	}
	return ""
}

func validateEmail(v string) string {
	if v == "" {
		return "Enter an email address"
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "Enter an email address in the correct format, like name@example.com"
	}
	return ""
}
