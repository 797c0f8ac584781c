package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// QuestionScope is the set of questions an attempt may see. The zero value
// means every question of the test; a subset with no ids means none.
type QuestionScope struct {
	subset bool
	ids    []uint
}

func AllQuestions() QuestionScope {
	return QuestionScope{}
}

func QuestionSubset(ids []uint) QuestionScope {
	cp := make([]uint, len(ids))
	copy(cp, ids)
	return QuestionScope{subset: true, ids: cp}
}

func (s QuestionScope) IsAll() bool {
	return !s.subset
}

func (s QuestionScope) IDs() []uint {
	if !s.subset {
		return nil
	}
	cp := make([]uint, len(s.ids))
	copy(cp, s.ids)
	return cp
}

func (s QuestionScope) Contains(id uint) bool {
	if !s.subset {
		return true
	}
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// encodeScope returns nil (SQL NULL) for the all-questions scope.
func encodeScope(s QuestionScope) (datatypes.JSON, error) {
	if s.IsAll() {
		return nil, nil
	}
	ids := s.ids
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeScope(raw datatypes.JSON) (QuestionScope, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return AllQuestions(), nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return QuestionScope{}, err
	}
	return QuestionSubset(ids), nil
}
