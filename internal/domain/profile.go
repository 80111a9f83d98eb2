package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ModuleSelections maps a profile module key (e.g. "favoriteFood") to the
// single option the user picked for it. Stored as JSONB.
type ModuleSelections map[string]string

func (s ModuleSelections) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *ModuleSelections) Scan(src interface{}) error {
	if src == nil {
		*s = ModuleSelections{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("module selections: cannot scan %T", src)
	}
	return json.Unmarshal(b, s)
}

type Profile struct {
	ID          int              `json:"id" db:"id"`
	UserID      string           `json:"user_id" db:"user_id"`
	DisplayName string           `json:"display_name" db:"display_name"`
	Selections  ModuleSelections `json:"selections" db:"selections"`
	Interests   []string         `json:"interests" db:"interests"`

	// Learned partner-feature weights, one per schema option bit, together
	// with the number of completed matches they were averaged over.
	Weights  []float64 `json:"-" db:"weights"`
	Strength int       `json:"-" db:"strength"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
