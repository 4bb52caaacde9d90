package holiday

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Type string

const (
	TypeOfficial  Type = "OFFICIAL"
	TypeFriday    Type = "FRIDAY"
	TypeReligious Type = "RELIGIOUS"
	TypeCustom    Type = "CUSTOM"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeOfficial, TypeFriday, TypeReligious, TypeCustom:
		return true
	}
	return false
}

type Holiday struct {
	Id          ulid.ULID `json:"id"`
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	IsRecurring bool      `json:"isRecurring"`
	IsActive    bool      `json:"isActive"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Filter struct {
	Type     *Type
	IsActive *bool
	From     *time.Time
	To       *time.Time
}
