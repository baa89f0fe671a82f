package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Table string   `yaml:"table" validate:"required,sqlident"`
	Addr  string   `yaml:"addr" validate:"omitempty,hostname_port"`
	Inner inner    `yaml:"inner"`
	Lat   *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
}

type inner struct {
	RPS float64 `yaml:"rps" validate:"gte=0"`
}

func TestStructValid(t *testing.T) {
	lat := 42.0
	s := sample{Table: "providers", Addr: "127.0.0.1:8420", Lat: &lat}
	if err := New().Struct(s); err != nil {
		t.Fatalf("Struct: %v", err)
	}
}

func TestStructErrors(t *testing.T) {
	lat := 123.0
	s := sample{Table: "drop table", Addr: "nohost", Inner: inner{RPS: -1}, Lat: &lat}
	err := New().Struct(s)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %T %v, want ValidationErrors", err, err)
	}
	fields := map[string]string{}
	for _, e := range verrs {
		fields[e.Field] = e.Message
	}
	for _, f := range []string{"table", "addr", "inner.rps", "lat"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing error for %s in %v", f, verrs)
		}
	}
	if !strings.Contains(fields["table"], "SQL identifier") {
		t.Errorf("table message = %q", fields["table"])
	}
	if !strings.HasPrefix(err.Error(), "validation failed: 4 error(s)") {
		t.Errorf("Error() = %q", err.Error())
	}
}
