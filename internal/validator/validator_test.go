package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/rmdb/internal/dto"
)

func TestValidate_MovieRules(t *testing.T) {
	v := New()
	if err := v.Validate(&dto.AddMovieDto{Title: "Alien"}); err != nil {
		t.Fatalf("valid movie rejected: %v", err)
	}

	empty := ""
	err := v.Validate(&dto.AddMovieDto{Title: strings.Repeat("x", 101), Description: &empty})
	var ve *Errors
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Errors, got %v", err)
	}
	if len(ve.Fields["title"]) != 1 || !strings.Contains(ve.Fields["title"][0], "maximum length of 100") {
		t.Fatalf("title errors = %v", ve.Fields["title"])
	}
	if len(ve.Fields["description"]) != 1 {
		t.Fatalf("an empty description must be rejected: %v", ve.Fields)
	}
}

func TestValidate_NegativeRunTime(t *testing.T) {
	v := New()
	neg := dto.TimeSpan(-time.Minute)
	err := v.Validate(&dto.EditMovieDto{Title: "Alien", RunTime: &neg})
	var ve *Errors
	if !errors.As(err, &ve) || len(ve.Fields["runTime"]) != 1 {
		t.Fatalf("negative runTime accepted: %v", err)
	}
	zero := dto.TimeSpan(0)
	if err := v.Validate(&dto.AddMovieDto{Title: "Alien", RunTime: &zero}); err != nil {
		t.Fatalf("zero runTime rejected: %v", err)
	}
}

func TestValidate_Required(t *testing.T) {
	v := New()
	err := v.Validate(&dto.AddActorDto{})
	var ve *Errors
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Errors, got %v", err)
	}
	if ve.Fields["name"][0] != "The name field is required." {
		t.Fatalf("name = %v", ve.Fields["name"])
	}
	if _, ok := ve.Fields["lastName"]; !ok {
		t.Fatalf("lastName missing from %v", ve.Fields)
	}

	if err := v.Validate(&dto.AddActorToMovieDto{}); err == nil {
		t.Fatal("nil actor id must be rejected")
	}
}
