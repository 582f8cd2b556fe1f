package student

import (
	"time"

	"github.com/samber/lo"
	"github.com/studentaid/disbursement/internal/types"
)

type Student struct {
	ID               string                 `db:"id" json:"id"`
	SIN              string                 `db:"sin" json:"sin"`
	SINStatus        types.SINStatus        `db:"sin_status" json:"sin_status"`
	DisabilityStatus types.DisabilityStatus `db:"disability_status" json:"disability_status"`
	FirstName        string                 `db:"first_name" json:"first_name"`
	LastName         string                 `db:"last_name" json:"last_name"`
	BirthDate        time.Time              `db:"birth_date" json:"birth_date"`
	Gender           string                 `db:"gender" json:"gender"`
	Email            string                 `db:"email" json:"email"`
	PostalCode       string                 `db:"postal_code" json:"postal_code"`
	types.BaseModel
}

// Restriction is a restriction placed on a student account
type Restriction struct {
	ID                 string                        `json:"id"`
	StudentID          string                        `json:"student_id"`
	Code               string                        `json:"code"`
	ActionTypes        []types.RestrictionActionType `json:"action_types"`
	AffectedValueCodes []string                      `json:"affected_value_codes"`
	Active             bool                          `json:"active"`
	types.BaseModel
}

func (r *Restriction) HasAction(action types.RestrictionActionType) bool {
	return lo.Contains(r.ActionTypes, action)
}

// Affects reports whether the restriction withholds the award code
func (r *Restriction) Affects(valueCode string) bool {
	return lo.Contains(r.AffectedValueCodes, valueCode)
}
