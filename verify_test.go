package protogen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestVerifyRoundTrip_WithImports(t *testing.T) {
	src := `syntax = "proto3";

package acme.v1;

import "google/protobuf/duration.proto";
import "google/protobuf/struct.proto";

message Job {
  google.protobuf.Duration timeout = 1;
  map<string, google.protobuf.Value> params = 2;
}
`
	set, _ := compileSource(t, "acme/v1/job.proto", src)
	if err := VerifyRoundTrip(context.Background(), set, "acme/v1/job.proto", Options{}); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyRoundTrip_StripComments(t *testing.T) {
	set, _ := compileFixture(t, "service_input.proto")
	if err := VerifyRoundTrip(context.Background(), set, "service_input.proto", Options{StripComments: true}); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyRoundTrip_MissingFile(t *testing.T) {
	set, _ := compileFixture(t, "service_input.proto")
	err := VerifyRoundTrip(context.Background(), set, "nope.proto", Options{})
	if err == nil || !strings.Contains(err.Error(), "nope.proto") {
		t.Errorf("expected missing file error, got %v", err)
	}
}

// Groups render as plain message fields, which recompile to a different
// field type.
func TestVerifyRoundTrip_DetectsSchemaChange(t *testing.T) {
	src := `syntax = "proto2";

package test;

message M {
  optional group Result = 1 {
    optional string url = 2;
  }
}
`
	set, _ := compileSource(t, "group.proto", src)
	err := VerifyRoundTrip(context.Background(), set, "group.proto", Options{})

	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("expected *VerifyError, got %v", err)
	}
	if verifyErr.What != "descriptor" || verifyErr.File != "group.proto" {
		t.Errorf("unexpected error: %+v", verifyErr)
	}
	if verifyErr.Diff == "" {
		t.Error("VerifyError should carry a diff")
	}
}

func TestVerifyRoundTrip_Malformed(t *testing.T) {
	set := namedSet("bad.proto")
	set.File[0].MessageType[0].Field = append(set.File[0].MessageType[0].Field,
		inOneof(scalar("x", 1, optional, typeInt32), 2))

	err := VerifyRoundTrip(context.Background(), set, "bad.proto", Options{})
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Errorf("expected *MalformedError, got %v", err)
	}
}

func TestDiffStrings(t *testing.T) {
	diff := DiffStrings("a\nb\nc\n", "a\nB\nc\n", "old", "new")
	for _, want := range []string{"--- old", "+++ new", "-b", "+B"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
	if DiffStrings("same\n", "same\n", "a", "b") != "" {
		t.Error("identical inputs should produce no diff")
	}
}
