package marketplace

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentora/internal/listing"
)

func ptr[T any](v T) *T { return &v }

func testForm() listing.Form {
	return listing.Form{
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
}

func TestApartmentTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apartment-types" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization header: %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"success":true,"data":[{"id":1,"name":"Flat"},{"id":2,"name":"Duplex"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	types, err := c.ApartmentTypes(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ApartmentTypes: %v", err)
	}
	if len(types) != 2 || types[0].Name != "Flat" {
		t.Errorf("unexpected types: %v", types)
	}
}

func TestMissingTokenShortCircuits(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	if _, err := c.ApartmentTypes(context.Background(), ""); !errors.Is(err, ErrNoToken) {
		t.Errorf("ApartmentTypes: expected ErrNoToken, got %v", err)
	}
	if _, err := c.CreateApartment(context.Background(), "", testForm(), nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("CreateApartment: expected ErrNoToken, got %v", err)
	}
	if _, err := c.Subscriptions(context.Background(), "", 1, ""); !errors.Is(err, ErrNoToken) {
		t.Errorf("Subscriptions: expected ErrNoToken, got %v", err)
	}
	if hits != 0 {
		t.Errorf("requests were sent without a token: %d", hits)
	}
}

func TestErrorClassification(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"success":false,"message":"nope"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	if _, err := c.ApartmentTypes(context.Background(), "tok"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("401: expected ErrUnauthorized, got %v", err)
	}

	status = http.StatusServiceUnavailable
	if _, err := c.ApartmentTypes(context.Background(), "tok"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("503: expected ErrUnavailable, got %v", err)
	}

	status = http.StatusUnprocessableEntity
	_, err := c.ApartmentTypes(context.Background(), "tok")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("422: expected RemoteError, got %v", err)
	}
	if remote.Message != "nope" || remote.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("remote error payload: %+v", remote)
	}
}

func TestCreateApartmentMultipart(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodPost || r.URL.Path != "/apartment" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}

		if got := r.FormValue("published"); got != "false" {
			t.Errorf("published=%q", got)
		}
		if got := r.FormValue("can_rate"); got != "false" {
			t.Errorf("can_rate=%q", got)
		}
		if got := r.FormValue("amenities"); got != `["wifi","parking"]` {
			t.Errorf("amenities=%q", got)
		}
		if got := r.FormValue("duration_type"); got != "month" {
			t.Errorf("duration_type=%q", got)
		}
		if got := r.FormValue("rooms"); got != "2" {
			t.Errorf("rooms=%q", got)
		}

		images := r.MultipartForm.File["images"]
		videos := r.MultipartForm.File["videos"]
		if len(images) != 1 || len(videos) != 1 {
			t.Fatalf("files: %d images, %d videos", len(images), len(videos))
		}
		if images[0].Size != 2<<20 {
			t.Errorf("image size: %d", images[0].Size)
		}
		if videos[0].Size != 5<<20 {
			t.Errorf("video size: %d", videos[0].Size)
		}

		w.Write([]byte(`{"success":true,"message":"created","data":{"id":77}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	uploads := []Upload{
		{Field: "images", FileName: "flat.png", ContentType: "image/png", Reader: bytes.NewReader(make([]byte, 2<<20))},
		{Field: "videos", FileName: "tour.mp4", ContentType: "video/mp4", Reader: bytes.NewReader(make([]byte, 5<<20))},
	}

	created, err := c.CreateApartment(context.Background(), "tok", testForm(), uploads)
	if err != nil {
		t.Fatalf("CreateApartment: %v", err)
	}
	if created.ID != 77 {
		t.Errorf("created id: %d", created.ID)
	}
	if requests != 1 {
		t.Errorf("expected exactly one request, got %d", requests)
	}
}

func TestCreateApartmentBodyFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but the body says no.
		w.Write([]byte(`{"success":false,"message":"title already exists"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CreateApartment(context.Background(), "tok", testForm(), nil)

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "title already exists" {
		t.Errorf("message: %q", remote.Message)
	}
}

func TestSubscriptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("search") != "basic" {
			t.Errorf("query: %v", q)
		}
		w.Write([]byte(`{"success":true,"data":{"subscriptions":[{"id":9,"plan_name":"Basic","price":1000,"currency":"₦","invoice_interval":"month","status":"active"}],"page":2,"total_pages":3}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	page, err := c.Subscriptions(context.Background(), "tok", 2, "basic")
	if err != nil {
		t.Fatalf("Subscriptions: %v", err)
	}
	if page.Page != 2 || page.TotalPages != 3 || len(page.Subscriptions) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.Subscriptions[0].PlanName != "Basic" {
		t.Errorf("plan name: %s", page.Subscriptions[0].PlanName)
	}
}
