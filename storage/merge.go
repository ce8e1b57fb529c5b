package storage

import (
	"errors"

	"github.com/c360studio/openspec/parser"
)

// Merge applies a delta onto the current capability spec and returns the
// merged result. The input spec is never mutated: the merge works on a
// clone and returns it only when every operation succeeds, so a failed
// merge leaves the capability byte-identical to its pre-merge state.
//
// Operations are applied REMOVED, then MODIFIED, then ADDED. The fixed
// order makes remove-then-add of the same title a rename rather than a
// conflict.
func Merge(spec *parser.CapabilitySpec, delta *parser.SpecDelta) (*parser.CapabilitySpec, error) {
	merged := spec.Clone()

	for _, req := range delta.Removed {
		idx := merged.Find(req.Title)
		if idx < 0 {
			return nil, &MergeError{
				Capability: merged.Name,
				Operation:  parser.OpRemoved,
				Title:      req.Title,
				Err:        ErrRequirementNotFound,
			}
		}
		merged.Requirements = append(merged.Requirements[:idx], merged.Requirements[idx+1:]...)
	}

	for _, req := range delta.Modified {
		idx := merged.Find(req.Title)
		if idx < 0 {
			return nil, &MergeError{
				Capability: merged.Name,
				Operation:  parser.OpModified,
				Title:      req.Title,
				Err:        ErrRequirementNotFound,
			}
		}
		// Whole-requirement replacement: body and scenarios are taken
		// from the delta, not diffed field by field.
		merged.Requirements[idx] = req
	}

	for _, req := range delta.Added {
		if merged.Has(req.Title) {
			return nil, &MergeError{
				Capability: merged.Name,
				Operation:  parser.OpAdded,
				Title:      req.Title,
				Err:        ErrRequirementExists,
			}
		}
		merged.Requirements = append(merged.Requirements, req)
	}

	return merged, nil
}

// MergeAndSave loads the capability (starting empty when it does not
// exist yet), applies the delta, and persists the result atomically. The
// on-disk spec is only replaced after the whole merge succeeds.
func (s *Store) MergeAndSave(capability string, delta *parser.SpecDelta) (*parser.CapabilitySpec, error) {
	spec, err := s.Load(capability)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		// First ADDED merge creates the capability.
		spec = &parser.CapabilitySpec{Name: capability, Title: capability}
	}

	merged, err := Merge(spec, delta)
	if err != nil {
		return nil, err
	}

	if err := s.Save(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
