package portfolio

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jonathan/resuai/internal/types"
)

// Section names a part of the document a mutation targets.
type Section string

const (
	SectionPersonalInfo   Section = "personalInfo"
	SectionSummary        Section = "summary"
	SectionSkills         Section = "skills"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
	SectionSocialLinks    Section = "socialLinks"
	SectionColorPalette   Section = "colorPalette"
)

// Action is what a mutation does to its section.
type Action string

const (
	ActionSet    Action = "set"
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Mutation is a single field-level change applied to the scratch document.
// For update, Value is merged onto the existing entry so omitted fields keep
// their values.
type Mutation struct {
	Section Section         `json:"section" validate:"required"`
	Action  Action          `json:"action" validate:"required,oneof=set add update remove"`
	Index   *int            `json:"index,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

func applyMutation(doc *types.PortfolioDocument, m Mutation) error {
	var err error
	switch m.Section {
	case SectionPersonalInfo:
		err = setOnly(m, func() error {
			// Merge so that socialLinks and the picture survive a partial update
			info := doc.PersonalInfo
			if err := decodeValue(m.Value, &info); err != nil {
				return err
			}
			doc.PersonalInfo = info
			return nil
		})
	case SectionSummary:
		err = setOnly(m, func() error {
			return decodeValue(m.Value, &doc.Summary)
		})
	case SectionSkills:
		err = setOnly(m, func() error {
			skills, err := decodeSkills(m.Value)
			if err != nil {
				return err
			}
			doc.Skills = skills
			return nil
		})
	case SectionColorPalette:
		err = applyPalette(doc, m)
	case SectionExperience:
		doc.Experience, err = applyList(doc.Experience, m)
	case SectionEducation:
		doc.Education, err = applyList(doc.Education, m)
	case SectionProjects:
		doc.Projects, err = applyList(doc.Projects, m)
	case SectionCertifications:
		doc.Certifications, err = applyList(doc.Certifications, m)
	case SectionSocialLinks:
		doc.PersonalInfo.SocialLinks, err = applyList(doc.PersonalInfo.SocialLinks, m)
	default:
		return fmt.Errorf("%w: unknown section %q", ErrInvalidMutation, m.Section)
	}
	return err
}

func setOnly(m Mutation, set func() error) error {
	if m.Action != ActionSet {
		return fmt.Errorf("%w: section %s only supports set", ErrInvalidMutation, m.Section)
	}
	return set()
}

func applyPalette(doc *types.PortfolioDocument, m Mutation) error {
	switch m.Action {
	case ActionSet:
		palette := types.ColorPalette{}
		if doc.ColorPalette != nil {
			palette = *doc.ColorPalette
		}
		if err := decodeValue(m.Value, &palette); err != nil {
			return err
		}
		doc.ColorPalette = &palette
		return nil
	case ActionRemove:
		doc.ColorPalette = nil
		return nil
	default:
		return fmt.Errorf("%w: colorPalette supports set and remove", ErrInvalidMutation)
	}
}

// applyList adds, updates or removes one entry of a list section.
func applyList[T any](list []T, m Mutation) ([]T, error) {
	switch m.Action {
	case ActionAdd:
		var item T
		if err := decodeValue(m.Value, &item); err != nil {
			return list, err
		}
		return append(list, item), nil
	case ActionUpdate:
		i, err := index(list, m)
		if err != nil {
			return list, err
		}
		item := list[i]
		if err := decodeValue(m.Value, &item); err != nil {
			return list, err
		}
		list[i] = item
		return list, nil
	case ActionRemove:
		i, err := index(list, m)
		if err != nil {
			return list, err
		}
		return slices.Delete(list, i, i+1), nil
	default:
		return list, fmt.Errorf("%w: section %s supports add, update and remove", ErrInvalidMutation, m.Section)
	}
}

func index[T any](list []T, m Mutation) (int, error) {
	if m.Index == nil {
		return 0, fmt.Errorf("%w: index is required for %s", ErrInvalidMutation, m.Action)
	}
	i := *m.Index
	if i < 0 || i >= len(list) {
		return 0, fmt.Errorf("%w: %s[%d] (length %d)", ErrIndexOutOfRange, m.Section, i, len(list))
	}
	return i, nil
}

func decodeValue(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: value is required", ErrInvalidMutation)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMutation, err)
	}
	return nil
}

// decodeSkills accepts either a comma separated string, which is parsed,
// or a list, which is taken as is.
func decodeSkills(raw json.RawMessage) ([]string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return types.ParseSkills(text), nil
	}
	var list []string
	if err := decodeValue(raw, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
