package listing

import (
	"errors"
	"reflect"
	"testing"

	"rentora/internal/media"
)

func ptr[T any](v T) *T { return &v }

// filledDraft has valid fields for every scalar step.
func filledDraft() *Draft {
	d := NewDraft("d1")
	d.Form = Form{
		CategoryID:   3,
		Title:        "2-bedroom flat in Lekki",
		Rooms:        ptr(2),
		Amount:       250_000,
		Currency:     "NGN",
		Duration:     12,
		DurationUnit: "month",
		Amenities:    []string{"wifi", "parking"},
		CountryCode:  "NG",
		StateCode:    "LA",
		CityCode:     "IKJ",
	}
	return d
}

func attach(t *testing.T, d *Draft, kind media.Kind, slot int) {
	t.Helper()
	att := &media.Attachment{FileName: "f", Size: 10, ContentType: string(kind) + "/x"}
	cell, err := d.Slot(kind, slot)
	if err != nil {
		t.Fatalf("Slot(%s, %d): %v", kind, slot, err)
	}
	*cell = att
}

func TestNextBlockedOnInvalidStep(t *testing.T) {
	d := NewDraft("d1")

	if err := d.Next(); err == nil {
		t.Fatal("Next on an empty draft should fail step 1 validation")
	}
	if d.Step != StepBasics {
		t.Errorf("step advanced to %d despite failed validation", d.Step)
	}
}

func TestWizardAdvancesThroughSteps(t *testing.T) {
	d := filledDraft()

	for want := StepPricing; want <= StepMedia; want++ {
		if err := d.Next(); err != nil {
			t.Fatalf("Next from step %d: %v", d.Step, err)
		}
		if d.Step != want {
			t.Fatalf("expected step %d, got %d", want, d.Step)
		}
	}

	// The media step gates on attachments, not fields.
	if err := d.Next(); !errors.Is(err, ErrMediaRequired) {
		t.Errorf("expected ErrMediaRequired at the media step, got %v", err)
	}
}

func TestValidateMediaStepIgnoresFieldValidity(t *testing.T) {
	d := NewDraft("d1") // every scalar field invalid
	attach(t, d, media.KindImage, 0)
	attach(t, d, media.KindVideo, 0)

	if err := d.ValidateStep(StepMedia); err != nil {
		t.Errorf("media step should pass with one image and one video: %v", err)
	}

	d2 := filledDraft()
	attach(t, d2, media.KindImage, 0)
	if err := d2.ValidateStep(StepMedia); !errors.Is(err, ErrMediaRequired) {
		t.Errorf("media step without a video: expected ErrMediaRequired, got %v", err)
	}

	d3 := filledDraft()
	attach(t, d3, media.KindVideo, 0)
	if err := d3.ValidateStep(StepMedia); !errors.Is(err, ErrMediaRequired) {
		t.Errorf("media step without an image: expected ErrMediaRequired, got %v", err)
	}
}

func TestPrevNeverValidates(t *testing.T) {
	d := filledDraft()
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}

	// Invalidate everything, then step back.
	d.Form = Form{}
	d.Prev()
	if d.Step != StepBasics {
		t.Errorf("expected step %d, got %d", StepBasics, d.Step)
	}

	// Prev at the first step stays put.
	d.Prev()
	if d.Step != StepBasics {
		t.Errorf("Prev below the first step moved to %d", d.Step)
	}
}

func TestCheckSubmitOnlyOnLastStep(t *testing.T) {
	d := filledDraft()
	attach(t, d, media.KindImage, 0)
	attach(t, d, media.KindVideo, 0)

	if err := d.CheckSubmit(); !errors.Is(err, ErrNotLastStep) {
		t.Errorf("expected ErrNotLastStep on step %d, got %v", d.Step, err)
	}

	d.Step = StepMedia
	if err := d.CheckSubmit(); err != nil {
		t.Errorf("CheckSubmit on the final step: %v", err)
	}
}

func TestResetMatchesFreshDraft(t *testing.T) {
	d := filledDraft()
	d.Step = StepMedia
	attach(t, d, media.KindImage, 2)
	attach(t, d, media.KindVideo, 4)

	d.Reset()

	fresh := NewDraft("d1")
	if d.Step != fresh.Step {
		t.Errorf("step after reset: %d, want %d", d.Step, fresh.Step)
	}
	if !reflect.DeepEqual(d.Form, fresh.Form) {
		t.Errorf("form after reset: %+v", d.Form)
	}
	if d.ImageCount() != 0 || d.VideoCount() != 0 {
		t.Errorf("media slots survived reset: %d images, %d videos", d.ImageCount(), d.VideoCount())
	}
}

func TestApplyRejectsUnknownAmenity(t *testing.T) {
	d := filledDraft()
	before := append([]string(nil), d.Form.Amenities...)

	err := d.Apply(FieldPatch{Amenities: &[]string{"wifi", "jacuzzi"}})
	if !errors.Is(err, ErrUnknownAmenity) {
		t.Fatalf("expected ErrUnknownAmenity, got %v", err)
	}
	if !reflect.DeepEqual(d.Form.Amenities, before) {
		t.Errorf("amenities changed on a rejected patch: %v", d.Form.Amenities)
	}
}

func TestApplyDeduplicatesAmenities(t *testing.T) {
	d := NewDraft("d1")

	if err := d.Apply(FieldPatch{Amenities: &[]string{"wifi", "gym", "wifi"}}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.Form.Amenities, []string{"wifi", "gym"}) {
		t.Errorf("expected deduplicated amenities, got %v", d.Form.Amenities)
	}
}

func TestApplyMergesOnlyProvidedFields(t *testing.T) {
	d := filledDraft()

	if err := d.Apply(FieldPatch{Title: ptr("Studio in Yaba"), Amount: ptr(int64(90_000))}); err != nil {
		t.Fatal(err)
	}
	if d.Form.Title != "Studio in Yaba" || d.Form.Amount != 90_000 {
		t.Errorf("patched fields not applied: %+v", d.Form)
	}
	if d.Form.CategoryID != 3 || d.Form.Currency != "NGN" {
		t.Errorf("untouched fields changed: %+v", d.Form)
	}
}

func TestStepValidationSubsets(t *testing.T) {
	d := filledDraft()
	d.Form.CountryCode = "" // a later step's field

	if err := d.ValidateStep(StepBasics); err != nil {
		t.Errorf("step 1 should not validate location fields: %v", err)
	}
	if err := d.ValidateStep(StepLocation); err == nil {
		t.Error("step 4 should require the country code")
	}
}
