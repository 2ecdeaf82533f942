package config

import (
	"reflect"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	opts, err := Parse([]string{"shader.lum"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Options{Input: "shader.lum", Output: "a.out"}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := Parse([]string{"-o", "out.bin", "-v", "-i", "vendor", "--includePath", "lib", "shader.lum"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Output != "out.bin" {
		t.Errorf("Output = %q, want %q", opts.Output, "out.bin")
	}
	if !opts.Verbose {
		t.Error("Verbose = false, want true")
	}
	if !reflect.DeepEqual(opts.IncludePaths, []string{"vendor", "lib"}) {
		t.Errorf("IncludePaths = %v", opts.IncludePaths)
	}
	if opts.Input != "shader.lum" {
		t.Errorf("Input = %q, want %q", opts.Input, "shader.lum")
	}
}

func TestParseLongFlagAliases(t *testing.T) {
	opts, err := Parse([]string{"--output", "x.bin", "--verbose", "shader.lum"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Output != "x.bin" || !opts.Verbose {
		t.Errorf("got %+v", opts)
	}
}

func TestParseHelpNeedsNoInput(t *testing.T) {
	opts, err := Parse([]string{"--help"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Help {
		t.Error("Help = false, want true")
	}
}

func TestParseMissingInputIsError(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Error("expected an error for no input file")
	}
}

func TestParseUnknownFlagIsError(t *testing.T) {
	if _, err := Parse([]string{"--bogus", "shader.lum"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestParseExtraArgumentIsError(t *testing.T) {
	if _, err := Parse([]string{"a.lum", "b.lum"}); err == nil {
		t.Error("expected an error for a second positional argument")
	}
}

func TestParseFlagMissingValueIsError(t *testing.T) {
	if _, err := Parse([]string{"-o"}); err == nil {
		t.Error("expected an error for -o with no value")
	}
}
