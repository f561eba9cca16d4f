package model

import (
	"slices"
	"strings"
)

// Address is an entry of a user's address book.
type Address struct {
	ID        string
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a Address) Trimmed() Address {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	return a
}

// AddressBook is an ordered list of addresses with at most one default.
type AddressBook []Address

// Add appends a. The first address always becomes the default.
func (b AddressBook) Add(a Address) AddressBook {
	if len(b) == 0 {
		a.IsDefault = true
	}
	out := slices.Clone(b)
	if a.IsDefault {
		out.clearDefault()
	}
	return append(out, a)
}

// Replace swaps the address with a.ID for a. It reports false when no such
// address exists. Unsetting the only default keeps it the default.
func (b AddressBook) Replace(a Address) (AddressBook, bool) {
	i := b.index(a.ID)
	if i < 0 {
		return b, false
	}
	out := slices.Clone(b)
	if a.IsDefault {
		out.clearDefault()
	} else if out[i].IsDefault {
		a.IsDefault = true
	}
	out[i] = a
	return out, true
}

// Remove drops the address with the given id. When the default goes the
// first remaining address is promoted.
func (b AddressBook) Remove(id string) (AddressBook, bool) {
	i := b.index(id)
	if i < 0 {
		return b, false
	}
	wasDefault := b[i].IsDefault
	out := slices.Delete(slices.Clone(b), i, i+1)
	if wasDefault && len(out) > 0 {
		out[0].IsDefault = true
	}
	return out, true
}

// Default returns the default address, if any.
func (b AddressBook) Default() (Address, bool) {
	for _, a := range b {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

func (b AddressBook) index(id string) int {
	return slices.IndexFunc(b, func(a Address) bool { return a.ID == id })
}

func (b AddressBook) clearDefault() {
	for i := range b {
		b[i].IsDefault = false
	}
}
