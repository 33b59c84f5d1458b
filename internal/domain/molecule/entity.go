// Package molecule provides the core domain model of chemsim: a named,
// canonicalized and fingerprinted Molecule, the ordered Set that holds them,
// and the intra- and inter-set similarity computations over a Set.  The
// chemistry behind it (SMILES reading and writing, aromaticity, canonical
// ranking and fingerprints) lives in this package too.
package molecule

import (
	"fmt"
)

// autoNameFormat names structures that were added without a name.
const autoNameFormat = "mol_name_%05d"

// UndefinedName stands in for the name of a failed structure that had none.
const UndefinedName = "Undefined"

// Molecule is a structure that was accepted into a Set.
type Molecule struct {
	Name            string
	CanonicalSMILES string
	Fingerprint     *Fingerprint
}

func (m *Molecule) String() string {
	return fmt.Sprintf("%s %s", m.CanonicalSMILES, m.Name)
}

// Entry is a structure to be added, optionally with a name.
type Entry struct {
	Structure string
	Name      string
}

// AddFailure records a structure that could not be added.
type AddFailure struct {
	Structure string
	Name      string
	Err       error
}

func (f AddFailure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Structure, f.Name, f.Err)
}
