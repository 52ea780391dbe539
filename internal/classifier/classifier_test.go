package classifier_test

import (
	"errors"
	"testing"

	"fakebench/internal/classifier"
	"fakebench/internal/services"
)

func TestScorerRegistryCoversAllArchitectures(t *testing.T) {
	reg := classifier.NewScorerRegistry("fakebench-score", 1.0)

	want := []classifier.Arch{
		classifier.ArchMeso4,
		classifier.ArchMesoInception4,
		classifier.ArchXception,
	}
	got := reg.Archs()
	if len(got) != len(want) {
		t.Fatalf("expected %d architectures, got %d", len(want), len(got))
	}
	for i, arch := range want {
		if got[i] != arch {
			t.Fatalf("arch %d: got %q, want %q", i, got[i], arch)
		}
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	reg := classifier.NewScorerRegistry("fakebench-score", 1.0)

	arch, factory, err := reg.Lookup("  MesoInception4 ")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if arch != classifier.ArchMesoInception4 {
		t.Fatalf("unexpected arch: %q", arch)
	}
	if factory == nil {
		t.Fatal("expected a factory")
	}
	if factory() == nil {
		t.Fatal("factory returned nil model")
	}
}

func TestLookupRejectsUnknownArchitecture(t *testing.T) {
	reg := classifier.NewScorerRegistry("fakebench-score", 1.0)

	_, _, err := reg.Lookup("resnet50")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegisterReplacesFactory(t *testing.T) {
	reg := classifier.NewRegistry()
	reg.Register(classifier.ArchMeso4, func() classifier.Model { return nil })

	replaced := false
	reg.Register(classifier.ArchMeso4, func() classifier.Model {
		replaced = true
		return nil
	})

	_, factory, err := reg.Lookup("meso4")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	factory()
	if !replaced {
		t.Fatal("expected the replacement factory to run")
	}
}
