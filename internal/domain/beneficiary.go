package domain

import "errors"

// Beneficiary represents a recipient supplied by the beneficiary manager.
// The engine treats beneficiaries as read-only input; their order matters
// (the first beneficiary is the default owner for indivisible assets).
type Beneficiary struct {
	ID   string
	Name string
}

// Validate ensures the beneficiary adheres to domain rules
// Returns an error if validation fails
func (b *Beneficiary) Validate() error {
	if b.ID == "" {
		return errors.New("beneficiary ID cannot be empty")
	}

	if b.Name == "" {
		return errors.New("beneficiary name cannot be empty")
	}

	return nil
}

// FindBeneficiary returns the beneficiary with the given ID, or false if it
// is not part of the collection
func FindBeneficiary(beneficiaries []Beneficiary, id string) (Beneficiary, bool) {
	for _, b := range beneficiaries {
		if b.ID == id {
			return b, true
		}
	}
	return Beneficiary{}, false
}
