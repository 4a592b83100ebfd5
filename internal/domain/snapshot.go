package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Candidate field names as they appear on the wire and in patches.
const (
	FieldFullName               = "fullName"
	FieldEmail                  = "email"
	FieldPhone                  = "phone"
	FieldAge                    = "age"
	FieldCity                   = "city"
	FieldHobbies                = "hobbies"
	FieldPerfectCandidateReason = "perfectCandidateReason"
	FieldProfileImageURL        = "profileImageUrl"
	FieldLastUpdated            = "lastUpdated"
)

// DiffableFields is the fixed, ordered set of form fields compared by Diff.
var DiffableFields = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldAge,
	FieldCity,
	FieldHobbies,
	FieldPerfectCandidateReason,
}

// patchOrder is DiffableFields followed by the session-scoped fields.
var patchOrder = append(append([]string{}, DiffableFields...), FieldProfileImageURL, FieldLastUpdated)

// Snapshot is the normalized, comparable projection of a candidate's editable fields.
// Two snapshots are equal field by field with ==.
type Snapshot struct {
	FullName               string
	Email                  string
	Phone                  string
	Age                    int
	HasAge                 bool
	City                   string
	Hobbies                string
	PerfectCandidateReason string
}

// NewSnapshot normalizes a raw, possibly partial, candidate-like record.
// Text fields are trimmed and default to "" when missing or not strings.
// Age passes through when it is an integer (or an integral number) and is
// otherwise treated as absent.
func NewSnapshot(raw map[string]any) Snapshot {
	s := Snapshot{
		FullName:               textField(raw, FieldFullName),
		Email:                  textField(raw, FieldEmail),
		Phone:                  textField(raw, FieldPhone),
		City:                   textField(raw, FieldCity),
		Hobbies:                textField(raw, FieldHobbies),
		PerfectCandidateReason: textField(raw, FieldPerfectCandidateReason),
	}
	s.Age, s.HasAge = intField(raw, FieldAge)
	return s
}

// SnapshotOf projects a stored candidate.
func SnapshotOf(c Candidate) Snapshot {
	return NewSnapshot(map[string]any{
		FieldFullName:               c.FullName,
		FieldEmail:                  c.Email,
		FieldPhone:                  c.Phone,
		FieldAge:                    c.Age,
		FieldCity:                   c.City,
		FieldHobbies:                c.Hobbies,
		FieldPerfectCandidateReason: c.PerfectCandidateReason,
	})
}

// Fields returns the snapshot in raw map form. NewSnapshot(s.Fields()) == s.
func (s Snapshot) Fields() map[string]any {
	m := map[string]any{
		FieldFullName:               s.FullName,
		FieldEmail:                  s.Email,
		FieldPhone:                  s.Phone,
		FieldCity:                   s.City,
		FieldHobbies:                s.Hobbies,
		FieldPerfectCandidateReason: s.PerfectCandidateReason,
	}
	if s.HasAge {
		m[FieldAge] = s.Age
	}
	return m
}

// value returns the field's comparable value; age is nil when absent.
func (s Snapshot) value(field string) any {
	switch field {
	case FieldFullName:
		return s.FullName
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldAge:
		if !s.HasAge {
			return nil
		}
		return s.Age
	case FieldCity:
		return s.City
	case FieldHobbies:
		return s.Hobbies
	case FieldPerfectCandidateReason:
		return s.PerfectCandidateReason
	}
	return nil
}

// Patch is a partial update: field name to new value.
type Patch map[string]any

// Diff returns the fields whose values differ between baseline and current,
// valued by the current value. The result is empty iff the snapshots are equal.
func Diff(baseline, current Snapshot) Patch {
	patch := Patch{}
	for _, f := range DiffableFields {
		if baseline.value(f) != current.value(f) {
			patch[f] = current.value(f)
		}
	}
	return patch
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p) == 0
}

// Keys lists the patch's fields in the fixed field order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, f := range patchOrder {
		if _, ok := p[f]; ok {
			keys = append(keys, f)
		}
	}
	return keys
}

// ApplyTo returns a copy of c with the patch written over it.
func (p Patch) ApplyTo(c Candidate) Candidate {
	for field, v := range p {
		switch field {
		case FieldFullName:
			c.FullName, _ = v.(string)
		case FieldEmail:
			c.Email, _ = v.(string)
		case FieldPhone:
			c.Phone, _ = v.(string)
		case FieldAge:
			c.Age, _ = v.(int)
		case FieldCity:
			c.City, _ = v.(string)
		case FieldHobbies:
			c.Hobbies, _ = v.(string)
		case FieldPerfectCandidateReason:
			c.PerfectCandidateReason, _ = v.(string)
		case FieldProfileImageURL:
			c.ProfileImageURL, _ = v.(string)
		case FieldLastUpdated:
			c.LastUpdated, _ = v.(time.Time)
		}
	}
	return c
}

func textField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	case json.Number:
		return strings.TrimSpace(v.String())
	}
	return ""
}

func intField(raw map[string]any, key string) (int, bool) {
	switch v := raw[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case *int:
		if v == nil {
			return 0, false
		}
		return *v, true
	case float64:
		// out of range is as malformed as fractional
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < math.MinInt || v >= math.MaxInt {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
