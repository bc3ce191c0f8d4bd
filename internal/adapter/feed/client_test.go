package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_NumbersAndStrings(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
		{"IcaoAddress":"4CA7B5","Latitude":53.42,"Longitude":-6.27,"Heading":90},
		{"IcaoAddress":"3C6586","Latitude":"51.5","Longitude":"-0.12","Heading":"270"}
	]`)

	records, err := NewClient(srv.URL, 0, logger.Discard()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}

	r := records[1]
	if r.ID != "3C6586" || *r.Latitude != 51.5 || *r.Longitude != -0.12 || *r.Heading != 270 {
		t.Fatalf("unexpected record %+v", r)
	}
	if *records[0].Heading != 90 {
		t.Fatalf("unexpected heading %v", *records[0].Heading)
	}
}

func TestFetch_BadElementsKeptAsInvalid(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
		{"IcaoAddress":"4CA7B5","Latitude":1,"Longitude":2},
		{"IcaoAddress":42},
		{"IcaoAddress":"ABCDEF","Latitude":"north","Longitude":2,"Heading":3}
	]`)

	records, err := NewClient(srv.URL, 0, logger.Discard()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Heading != nil {
		t.Fatal("missing heading must stay nil")
	}
	if records[1].ID != "" {
		t.Fatal("undecodable element must have no id")
	}
	if records[2].Latitude != nil {
		t.Fatal("non-numeric latitude must stay nil")
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, types.ErrFetchFailed},
		{"not found", http.StatusNotFound, ``, types.ErrFetchFailed},
		{"not json", http.StatusOK, `<html>`, types.ErrMalformedSnapshot},
		{"object instead of array", http.StatusOK, `{"IcaoAddress":"A"}`, types.ErrMalformedSnapshot},
		{"null body", http.StatusOK, `null`, types.ErrMalformedSnapshot},
		{"empty body", http.StatusOK, ``, types.ErrMalformedSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, 0, logger.Discard()).Fetch(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0, logger.Discard()).Fetch(context.Background())
	if !errors.Is(err, types.ErrFetchFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := serve(t, http.StatusOK, `[`+strings.Repeat(`{"IcaoAddress":"4CA7B5"},`, 100)+`{}]`)

	_, err := NewClient(srv.URL, 64, logger.Discard()).Fetch(context.Background())
	if !errors.Is(err, types.ErrMalformedSnapshot) {
		t.Fatalf("err = %v", err)
	}
}

func TestFetch_EmptySnapshot(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)

	records, err := NewClient(srv.URL, 0, logger.Discard()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records", len(records))
	}
}
