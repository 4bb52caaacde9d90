package pkg

import (
	"errors"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

func NewID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy())
}

func ParseID(s string) (ulid.ULID, error) {
	if s == "" {
		return ulid.ULID{}, errors.New("id cannot be empty")
	}

	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, errors.New("invalid id format")
	}

	return id, nil
}

func ParseIDPtr(s *string) (*ulid.ULID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := ParseID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// IDPtrString converts an optional id into its nullable column form.
func IDPtrString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// ParseIDColumn is the inverse of IDPtrString. Malformed values read as nil.
func ParseIDColumn(s *string) *ulid.ULID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := ulid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func IsEmptyID(id ulid.ULID) bool {
	return id == ulid.ULID{}
}

func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
