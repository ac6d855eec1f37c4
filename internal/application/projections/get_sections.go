package projections

import (
	"context"

	"schooladmin/internal/domain/section"
)

// GetSectionsQuery carries query parameters.
type GetSectionsQuery struct {
	EditID int64 // 0 = no row in edit mode
}

// GetSectionsResult carries the section manager payload.
type GetSectionsResult struct {
	Sections    []section.Section
	GradeLevels []section.GradeLevel
	Editing     *section.Section
}

// GetSectionsDeps holds dependencies for GetSections.
type GetSectionsDeps struct {
	SectionStore SectionStore
}

// QueryGetSections lists sections and grade levels for the section manager.
// POST: Editing is set only when EditID names a listed section
func QueryGetSections(ctx context.Context, query GetSectionsQuery, deps GetSectionsDeps) (GetSectionsResult, error) {
	sections, err := deps.SectionStore.List(ctx)
	if err != nil {
		return GetSectionsResult{}, err
	}
	levels, err := deps.SectionStore.ListGradeLevels(ctx)
	if err != nil {
		return GetSectionsResult{}, err
	}

	result := GetSectionsResult{Sections: sections, GradeLevels: levels}
	if query.EditID != 0 {
		for i := range sections {
			if sections[i].ID == query.EditID {
				s := sections[i]
				result.Editing = &s
				break
			}
		}
	}
	return result, nil
}
