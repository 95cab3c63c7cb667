package listing

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"rentora/internal/media"
)

const (
	StepBasics   = 1
	StepPricing  = 2
	StepDuration = 3
	StepLocation = 4
	StepMedia    = 5

	FirstStep = StepBasics
	LastStep  = StepMedia
)

// stepFields maps each wizard step to the form fields it validates.
// Step 5 has no scalar fields; it checks media presence directly.
var stepFields = map[int][]string{
	StepBasics:   {"CategoryID", "Title", "Rooms", "Description"},
	StepPricing:  {"Amount", "Currency", "SecurityDeposit"},
	StepDuration: {"Duration", "DurationUnit", "Amenities"},
	StepLocation: {"CountryCode", "StateCode", "CityCode"},
	StepMedia:    {},
}

var (
	ErrMediaRequired  = errors.New("listing: at least one image and one video are required")
	ErrUnknownAmenity = errors.New("listing: amenity not in vocabulary")
	ErrNotLastStep    = errors.New("listing: submit is only allowed on the final step")
)

// Validate checks wizard fields. durationunit restricts the lease
// duration unit to the supported billing units.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	Validate.RegisterValidation("durationunit", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "day", "week", "month", "year":
			return true
		}
		return false
	})
}

// Draft is one property submission in progress: the form fields, the
// current step, and the occupied media slots.
type Draft struct {
	ID        string                             `json:"id"`
	Step      int                                `json:"step"`
	Form      Form                               `json:"form"`
	Images    [media.MaxImages]*media.Attachment `json:"images"`
	Videos    [media.MaxVideos]*media.Attachment `json:"videos"`
	CreatedAt time.Time                          `json:"created_at"`
	UpdatedAt time.Time                          `json:"updated_at"`
}

func NewDraft(id string) *Draft {
	now := time.Now()
	return &Draft{ID: id, Step: FirstStep, CreatedAt: now, UpdatedAt: now}
}

// Apply merges a partial field update into the form. Amenities are
// checked against the vocabulary and de-duplicated; an unknown amenity
// rejects the whole patch.
func (d *Draft) Apply(p FieldPatch) error {
	if p.Amenities != nil {
		seen := make(map[string]struct{}, len(*p.Amenities))
		cleaned := make([]string, 0, len(*p.Amenities))
		for _, a := range *p.Amenities {
			if !ValidAmenity(a) {
				return fmt.Errorf("%w: %q", ErrUnknownAmenity, a)
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			cleaned = append(cleaned, a)
		}
		d.Form.Amenities = cleaned
	}

	if p.CategoryID != nil {
		d.Form.CategoryID = *p.CategoryID
	}
	if p.Title != nil {
		d.Form.Title = *p.Title
	}
	if p.Rooms != nil {
		d.Form.Rooms = p.Rooms
	}
	if p.Description != nil {
		d.Form.Description = p.Description
	}
	if p.Amount != nil {
		d.Form.Amount = *p.Amount
	}
	if p.Currency != nil {
		d.Form.Currency = *p.Currency
	}
	if p.SecurityDeposit != nil {
		d.Form.SecurityDeposit = p.SecurityDeposit
	}
	if p.Duration != nil {
		d.Form.Duration = *p.Duration
	}
	if p.DurationUnit != nil {
		d.Form.DurationUnit = *p.DurationUnit
	}
	if p.CountryCode != nil {
		d.Form.CountryCode = *p.CountryCode
	}
	if p.StateCode != nil {
		d.Form.StateCode = *p.StateCode
	}
	if p.CityCode != nil {
		d.Form.CityCode = *p.CityCode
	}

	d.touch()
	return nil
}

func (d *Draft) ImageCount() int {
	return countSlots(d.Images[:])
}

func (d *Draft) VideoCount() int {
	return countSlots(d.Videos[:])
}

func countSlots(slots []*media.Attachment) int {
	n := 0
	for _, s := range slots {
		if s != nil {
			n++
		}
	}
	return n
}

// ValidateStep runs the given step's checks against the current form.
// The media step passes iff at least one image and one video are
// attached, regardless of the other fields.
func (d *Draft) ValidateStep(step int) error {
	if step < FirstStep || step > LastStep {
		return fmt.Errorf("listing: no such step %d", step)
	}
	if step == StepMedia {
		if d.ImageCount() == 0 || d.VideoCount() == 0 {
			return ErrMediaRequired
		}
		return nil
	}
	return Validate.StructPartial(&d.Form, stepFields[step]...)
}

// Next validates the current step and advances on success. Forward-only
// validation: moving past a step is the only thing gated on it.
func (d *Draft) Next() error {
	if err := d.ValidateStep(d.Step); err != nil {
		return err
	}
	if d.Step < LastStep {
		d.Step++
		d.touch()
	}
	return nil
}

// Prev steps back without re-validating anything.
func (d *Draft) Prev() {
	if d.Step > FirstStep {
		d.Step--
		d.touch()
	}
}

// CheckSubmit gates the terminal action: final step only, with media
// presence re-checked directly.
func (d *Draft) CheckSubmit() error {
	if d.Step != LastStep {
		return ErrNotLastStep
	}
	if d.ImageCount() == 0 || d.VideoCount() == 0 {
		return ErrMediaRequired
	}
	return nil
}

// Reset returns the draft to the state of a freshly opened one: first
// step, zero fields, empty slots. Spool files are the caller's to
// release.
func (d *Draft) Reset() {
	d.Step = FirstStep
	d.Form = Form{}
	d.Images = [media.MaxImages]*media.Attachment{}
	d.Videos = [media.MaxVideos]*media.Attachment{}
	d.touch()
}

// Slot returns a pointer to the slot cell for a kind, so callers can
// read and replace attachments uniformly.
func (d *Draft) Slot(kind media.Kind, slot int) (**media.Attachment, error) {
	slots, err := media.SlotsFor(kind)
	if err != nil {
		return nil, err
	}
	if slot < 0 || slot >= slots {
		return nil, media.ErrSlotRange
	}
	if kind == media.KindImage {
		return &d.Images[slot], nil
	}
	return &d.Videos[slot], nil
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now()
}
