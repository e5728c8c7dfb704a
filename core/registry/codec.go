package registry

import (
	"fmt"
	"strings"
)

const (
	// FieldSeparator splits the three fields of a flat record.
	FieldSeparator = "|"
	// LabelSeparator joins the labels inside the third field.
	LabelSeparator = ","

	recordFields = 3
)

// Encode renders an entry as "filename|reference|label1,label2".
// Duplicate labels are written once, in first-seen order. Entries that would
// not decode back to the same fields are rejected with ErrUnencodable.
func Encode[V any](e *Entry[V]) (string, error) {
	if err := Validate(e); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(e.Filename)
	b.WriteString(FieldSeparator)
	b.WriteString(e.Reference.String())
	b.WriteString(FieldSeparator)
	b.WriteString(strings.Join(uniqueLabels(e.Labels), LabelSeparator))
	return b.String(), nil
}

// Validate checks that every field of e survives an encode and decode cycle.
func Validate[V any](e *Entry[V]) error {
	if strings.Contains(e.Filename, FieldSeparator) {
		return fmt.Errorf("%w: filename %q contains %q", ErrUnencodable, e.Filename, FieldSeparator)
	}
	if strings.Contains(e.Reference.String(), FieldSeparator) {
		return fmt.Errorf("%w: reference %q contains %q", ErrUnencodable, e.Reference, FieldSeparator)
	}
	for _, l := range e.Labels {
		if err := ValidateLabel(l); err != nil {
			return fmt.Errorf("%w: %w", ErrUnencodable, err)
		}
	}
	return nil
}

// ValidateLabel rejects names that are empty or contain a record separator.
func ValidateLabel(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidLabel)
	}
	if strings.ContainsAny(name, FieldSeparator+LabelSeparator) {
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidLabel, name)
	}
	return nil
}

// Decode parses a flat record produced by Encode. The id is not part of the
// record; callers take it from the record key.
func Decode[V any](record string) (*Entry[V], error) {
	parts := strings.Split(record, FieldSeparator)
	if len(parts) != recordFields {
		return nil, &DecodeError{Fields: len(parts), Reason: "expected 3 fields"}
	}

	var labels []string
	if parts[2] != "" {
		labels = uniqueLabels(strings.Split(parts[2], LabelSeparator))
	}

	return &Entry[V]{
		Filename:  parts[0],
		Reference: Reference(parts[1]),
		Labels:    labels,
	}, nil
}

// uniqueLabels drops empty and repeated labels, keeping the first occurrence.
func uniqueLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
