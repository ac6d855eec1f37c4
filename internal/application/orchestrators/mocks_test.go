package orchestrators

import (
	"context"
	"strings"

	accountStorage "schooladmin/internal/adapters/storage/account"
	"schooladmin/internal/domain/account"
	"schooladmin/internal/domain/section"
)

// --- in-memory test doubles ---

type memAccountStore struct {
	accounts map[string]account.Account // keyed by lower-case username
	nextID   int64
	saves    int
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

func (s *memAccountStore) GetByUsername(_ context.Context, username string) (account.Account, error) {
	a, ok := s.accounts[strings.ToLower(username)]
	if !ok {
		return account.Account{}, accountStorage.ErrNotFound
	}
	return a, nil
}

func (s *memAccountStore) Create(_ context.Context, a account.Account) (int64, error) {
	s.nextID++
	a.ID = s.nextID
	s.accounts[strings.ToLower(a.Username)] = a
	return a.ID, nil
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.saves++
	s.accounts[strings.ToLower(a.Username)] = a
	return nil
}

type memSectionStore struct {
	sections  map[int64]section.Section
	grades    map[int64]section.GradeLevel
	nextID    int64
	createErr error
}

func newMemSectionStore() *memSectionStore {
	return &memSectionStore{
		sections: make(map[int64]section.Section),
		grades: map[int64]section.GradeLevel{
			3: {ID: 3, Name: "Grade 7"},
			4: {ID: 4, Name: "Grade 8"},
		},
		nextID: 4,
	}
}

func (s *memSectionStore) GetGradeLevel(_ context.Context, id int64) (section.GradeLevel, error) {
	g, ok := s.grades[id]
	if !ok {
		return section.GradeLevel{}, section.ErrGradeLevelUnknown
	}
	return g, nil
}

func (s *memSectionStore) NameTaken(_ context.Context, gradeLevelID int64, name string, excludeID int64) (bool, error) {
	for _, sec := range s.sections {
		if sec.ID != excludeID && sec.GradeLevelID == gradeLevelID && strings.EqualFold(sec.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memSectionStore) Create(_ context.Context, sec section.Section) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	sec.ID = s.nextID
	s.sections[sec.ID] = sec
	return sec.ID, nil
}

func (s *memSectionStore) GetByID(_ context.Context, id int64) (section.Section, error) {
	sec, ok := s.sections[id]
	if !ok {
		return section.Section{}, section.ErrNotFound
	}
	if g, ok := s.grades[sec.GradeLevelID]; ok {
		sec.GradeLevel = &g
	}
	return sec, nil
}

func (s *memSectionStore) Update(_ context.Context, sec section.Section) error {
	if _, ok := s.sections[sec.ID]; !ok {
		return section.ErrNotFound
	}
	sec.GradeLevel = nil
	s.sections[sec.ID] = sec
	return nil
}

func (s *memSectionStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.sections[id]; !ok {
		return section.ErrNotFound
	}
	delete(s.sections, id)
	return nil
}
