package recipe

import (
	"testing"
)

func TestExtractRequirementsStopsAtNextSection(t *testing.T) {
	meta := writeMeta(t, `requirements:
  host:
    - a
  run:
    - b
about:
  summary: x
`)

	got, err := ExtractRequirements(meta)
	if err != nil {
		t.Fatalf("ExtractRequirements failed: %v", err)
	}

	want := "requirements:\n  host:\n    - a\n  run:\n    - b"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractRequirementsSkipsBlanksAndComments(t *testing.T) {
	meta := writeMeta(t, `requirements:
  build:

    # compiler comment
    - {{ compiler('c') }}
    - make

  run_constrained:
    - optional-dep
outputs:
  - name: sub
`)

	got, err := ExtractRequirements(meta)
	if err != nil {
		t.Fatalf("ExtractRequirements failed: %v", err)
	}

	want := "requirements:\n  build:\n    - {{ compiler('c') }}\n    - make\n  run_constrained:\n    - optional-dep"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractRequirementsTemplateConditionalDoesNotEndSection(t *testing.T) {
	meta := writeMeta(t, `requirements:
  run:
    - python
{% if linux %}
    - patchelf
{% endif %}
  host:
    - pip
test:
  imports:
    - pkga
`)

	got, err := ExtractRequirements(meta)
	if err != nil {
		t.Fatalf("ExtractRequirements failed: %v", err)
	}

	want := "requirements:\n  run:\n    - python\n{% if linux %}\n    - patchelf\n{% endif %}\n  host:\n    - pip"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestExtractRequirementsAbsentSection(t *testing.T) {
	meta := writeMeta(t, `package:
  name: pkga
about:
  summary: x
`)

	got, err := ExtractRequirements(meta)
	if err != nil {
		t.Fatalf("ExtractRequirements failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}
