// Package reference fetches and caches the fixed vocabularies the forms
// offer: appointment types, locations, courts, probation teams, hearing and
// meeting types, and prison reference domains.
package reference

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/statestore"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// PrisonSource is the part of the prison API the gateway reads.
type PrisonSource interface {
	GetAppointmentTypes(ctx context.Context) ([]prisonapi.ReferenceCode, error)
	GetEventLocations(ctx context.Context, prisonID string) ([]prisonapi.Location, error)
	GetReferenceCodes(ctx context.Context, domain string) ([]prisonapi.ReferenceCode, error)
}

// VideoLinkSource is the part of the video link API the gateway reads.
type VideoLinkSource interface {
	GetCourts(ctx context.Context) ([]videolink.Code, error)
	GetProbationTeams(ctx context.Context) ([]videolink.Code, error)
	GetReferenceCodes(ctx context.Context, group string) ([]videolink.Code, error)
}

// Option is one selectable entry.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Location is an event location with both the numeric id used by the prison
// API and the key used by the video link API.
type Location struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Value is the form value for the location.
func (l Location) Value() string {
	return strconv.FormatInt(l.ID, 10)
}

// AppointmentData is everything the appointment forms offer.
type AppointmentData struct {
	AppointmentTypes []Option
	Locations        []Location
	ProbationTeams   []Option
	MeetingTypes     []Option
	Courts           []Option
	HearingTypes     []Option
}

// Describe returns the display text for value, or value itself when unknown.
func Describe(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Text
		}
	}
	return value
}

// FindLocation looks a location up by its form value.
func (d *AppointmentData) FindLocation(value string) (Location, bool) {
	for _, l := range d.Locations {
		if l.Value() == value {
			return l, true
		}
	}
	return Location{}, false
}

// LocationText returns the description of the location with form value.
func (d *AppointmentData) LocationText(value string) string {
	if l, ok := d.FindLocation(value); ok {
		return l.Text
	}
	return value
}

// Gateway reads reference data through a short-lived cache.
type Gateway struct {
	prison    PrisonSource
	videoLink VideoLinkSource
	cache     statestore.Store
	ttl       time.Duration
	logger    *logging.Logger
}

// NewGateway wires the sources. cache may be nil to disable caching.
func NewGateway(prison PrisonSource, videoLink VideoLinkSource, cache statestore.Store, ttl time.Duration, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{
		prison:    prison,
		videoLink: videoLink,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
	}
}

// AppointmentData fetches the six independent lists in parallel.
func (g *Gateway) AppointmentData(ctx context.Context, prisonID string) (*AppointmentData, error) {
	var data AppointmentData
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		opts, err := cached(ctx, g, "appointment-types", func(ctx context.Context) ([]Option, error) {
			codes, err := g.prison.GetAppointmentTypes(ctx)
			return sortedOptions(fromPrisonCodes(codes)), err
		})
		data.AppointmentTypes = opts
		return err
	})
	eg.Go(func() error {
		locs, err := cached(ctx, g, "locations:"+prisonID, func(ctx context.Context) ([]Location, error) {
			raw, err := g.prison.GetEventLocations(ctx, prisonID)
			out := make([]Location, 0, len(raw))
			for _, l := range raw {
				out = append(out, Location{ID: l.ID, Key: l.Key, Text: l.Description})
			}
			return out, err
		})
		data.Locations = locs
		return err
	})
	eg.Go(func() error {
		opts, err := cached(ctx, g, "probation-teams", func(ctx context.Context) ([]Option, error) {
			codes, err := g.videoLink.GetProbationTeams(ctx)
			return sortedOptions(fromVideoLinkCodes(codes)), err
		})
		data.ProbationTeams = opts
		return err
	})
	eg.Go(func() error {
		opts, err := cached(ctx, g, "meeting-types", func(ctx context.Context) ([]Option, error) {
			codes, err := g.videoLink.GetReferenceCodes(ctx, videolink.GroupProbationMeetingType)
			return fromVideoLinkCodes(codes), err
		})
		data.MeetingTypes = opts
		return err
	})
	eg.Go(func() error {
		opts, err := cached(ctx, g, "courts", func(ctx context.Context) ([]Option, error) {
			codes, err := g.videoLink.GetCourts(ctx)
			return sortedOptions(fromVideoLinkCodes(codes)), err
		})
		data.Courts = opts
		return err
	})
	eg.Go(func() error {
		opts, err := cached(ctx, g, "hearing-types", func(ctx context.Context) ([]Option, error) {
			codes, err := g.videoLink.GetReferenceCodes(ctx, videolink.GroupCourtHearingType)
			return fromVideoLinkCodes(codes), err
		})
		data.HearingTypes = opts
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("reference: appointment data: %w", err)
	}
	return &data, nil
}

// Domain returns the active codes of a prison reference domain.
func (g *Gateway) Domain(ctx context.Context, domain string) ([]Option, error) {
	opts, err := cached(ctx, g, "domain:"+domain, func(ctx context.Context) ([]Option, error) {
		codes, err := g.prison.GetReferenceCodes(ctx, domain)
		return sortedOptions(fromPrisonCodes(codes)), err
	})
	if err != nil {
		return nil, fmt.Errorf("reference: domain %s: %w", domain, err)
	}
	return opts, nil
}

func cached[T any](ctx context.Context, g *Gateway, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := "reference:" + name
	if g.cache != nil {
		var hit []T
		ok, err := g.cache.Load(ctx, key, &hit)
		if err != nil {
			g.logger.Warn("reference cache read failed", "key", key, "error", err)
		} else if ok {
			return hit, nil
		}
	}

	values, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if g.cache != nil && g.ttl > 0 {
		if err := g.cache.Save(ctx, key, values, g.ttl); err != nil {
			g.logger.Warn("reference cache write failed", "key", key, "error", err)
		}
	}
	return values, nil
}

func fromPrisonCodes(codes []prisonapi.ReferenceCode) []Option {
	out := make([]Option, 0, len(codes))
	for _, c := range codes {
		if !c.Active() {
			continue
		}
		out = append(out, Option{Value: c.Code, Text: c.Description})
	}
	return out
}

func fromVideoLinkCodes(codes []videolink.Code) []Option {
	out := make([]Option, 0, len(codes))
	for _, c := range codes {
		out = append(out, Option{Value: c.Code, Text: c.Description})
	}
	return out
}

func sortedOptions(opts []Option) []Option {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Text < opts[j].Text })
	return opts
}
