package store

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/debemdeboas/ghostwriter/internal/model"
)

var validate = validator.New()

// DecodeVoiceProfile parses a persisted voice profile. A JSON null or an
// empty string decodes to nil.
func DecodeVoiceProfile(data []byte) (*string, error) {
	var profile *string
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("error decoding voice profile: %w", err)
	}
	if profile == nil || *profile == "" {
		return nil, nil
	}
	return profile, nil
}

// DecodeDrafts parses and validates a persisted drafts list. The result is
// ordered newest first regardless of the stored order.
func DecodeDrafts(data []byte) ([]model.Draft, error) {
	var drafts []model.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("error decoding drafts: %w", err)
	}

	for i := range drafts {
		if err := validate.Struct(drafts[i]); err != nil {
			return nil, fmt.Errorf("invalid draft at index %d: %w", i, err)
		}
	}

	sortDrafts(drafts)
	return drafts, nil
}

// DecodePersonas parses and validates a persisted personas list, keeping
// the stored order.
func DecodePersonas(data []byte) ([]model.Persona, error) {
	var personas []model.Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("error decoding personas: %w", err)
	}

	for i := range personas {
		if err := validate.Struct(personas[i]); err != nil {
			return nil, fmt.Errorf("invalid persona at index %d: %w", i, err)
		}
	}
	return personas, nil
}

func encode[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding %T: %w", v, err)
	}
	return data, nil
}

func sortDrafts(drafts []model.Draft) {
	slices.SortStableFunc(drafts, func(a, b model.Draft) int {
		return -a.CreatedAt.Compare(b.CreatedAt)
	})
}

// Normalize decodes a value exported from another copy of the store,
// validates it and re-encodes it the way the store persists it. A cleared
// voice profile normalizes to nil.
func Normalize(c Collection, data []byte) ([]byte, error) {
	switch c {
	case CollectionVoiceProfile:
		profile, err := DecodeVoiceProfile(data)
		if err != nil || profile == nil {
			return nil, err
		}
		return encode(*profile)
	case CollectionDrafts:
		drafts, err := DecodeDrafts(data)
		if err != nil {
			return nil, err
		}
		if drafts == nil {
			drafts = []model.Draft{}
		}
		return encode(drafts)
	case CollectionPersonas:
		personas, err := DecodePersonas(data)
		if err != nil {
			return nil, err
		}
		if personas == nil {
			personas = []model.Persona{}
		}
		return encode(personas)
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}
