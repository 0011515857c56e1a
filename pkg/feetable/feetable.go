// Package feetable decodes the published fee schedule: user types holding
// named sections, each a list of services with their raw fee strings.
package feetable

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amirasaad/feescope/pkg/schema"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUserTypeNotFound = errors.New("user type not found")
	ErrSectionNotFound  = errors.New("fee section not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrInvalidTable     = errors.New("invalid fee table")
)

// UserType is a top-level key of the fee schedule.
type UserType string

const (
	Customer UserType = "Customer"
	Business UserType = "Business"
)

// UserTypeFor maps the account toggle ("individual"/"business") to the key
// used by the schedule. Schedule keys themselves are accepted as well.
func UserTypeFor(account string) (UserType, error) {
	switch strings.ToLower(strings.TrimSpace(account)) {
	case "individual", "customer", "":
		return Customer, nil
	case "business":
		return Business, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUserTypeNotFound, account)
}

var (
	//go:embed schema/fees.schema.json
	feesSchemaJSON []byte
	feesSchema     = schema.New("fees.schema.json", feesSchemaJSON)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Entry is one priced service.
type Entry struct {
	Service     string `json:"Service" validate:"required,max=200"`
	Fee         string `json:"Fee" validate:"max=200"`
	Description string `json:"Description,omitempty" validate:"max=500"`
}

// Label is the fee followed by its description in parentheses, the way the
// fee cards print it.
func (e Entry) Label() string {
	if e.Description == "" {
		return e.Fee
	}
	return e.Fee + " (" + e.Description + ")"
}

// Table is the whole schedule.
type Table map[UserType]map[string][]Entry

// Decode validates raw against the schedule schema, then decodes it and
// checks every entry.
func Decode(raw []byte) (Table, error) {
	if err := feesSchema.Validate(raw); err != nil {
		return nil, err
	}
	var wire map[UserType]map[string][]struct {
		Service     string  `json:"Service"`
		Fee         string  `json:"Fee"`
		Description *string `json:"Description"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decoding fee table: %w", err)
	}
	t := make(Table, len(wire))
	for ut, sections := range wire {
		t[ut] = make(map[string][]Entry, len(sections))
		for name, items := range sections {
			entries := make([]Entry, 0, len(items))
			for i, it := range items {
				e := Entry{
					Service: strings.TrimSpace(it.Service),
					Fee:     strings.TrimSpace(it.Fee),
				}
				if it.Description != nil {
					e.Description = strings.TrimSpace(*it.Description)
				}
				if err := validate.Struct(e); err != nil {
					return nil, fmt.Errorf("%w: %s/%s[%d]: %w", ErrInvalidTable, ut, name, i, err)
				}
				entries = append(entries, e)
			}
			t[ut][name] = entries
		}
	}
	return t, nil
}

// Sections returns the section names for a user type, sorted.
func (t Table) Sections(ut UserType) ([]string, error) {
	sections, ok := t[ut]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserTypeNotFound, ut)
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Section returns the entries of one section. A missing section is an
// error; an empty one is not.
func (t Table) Section(ut UserType, section string) ([]Entry, error) {
	sections, ok := t[ut]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserTypeNotFound, ut)
	}
	entries, ok := sections[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrSectionNotFound, ut, section)
	}
	return entries, nil
}

// Find returns the entry for service in a section. Service names match
// exactly first, then case-insensitively.
func (t Table) Find(ut UserType, section, service string) (Entry, error) {
	entries, err := t.Section(ut, section)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Service == service {
			return e, nil
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.Service, strings.TrimSpace(service)) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s/%s/%s", ErrServiceNotFound, ut, section, service)
}
