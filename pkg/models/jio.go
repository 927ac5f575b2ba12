package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JioType 表示发帖意图：买、卖或只是约攀
type JioType string

const (
	JioTypeBuyer  JioType = "buyer"
	JioTypeSeller JioType = "seller"
	JioTypeOther  JioType = "other"
)

// Valid reports whether t is one of the known intents.
func (t JioType) Valid() bool {
	switch t {
	case JioTypeBuyer, JioTypeSeller, JioTypeOther:
		return true
	}
	return false
}

// RequiresPrice buyer/seller 必须带价格
func (t JioType) RequiresPrice() bool {
	return t == JioTypeBuyer || t == JioTypeSeller
}

// Jio represents a buy/sell/social post for gym passes (table: posts)
type Jio struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"userId" db:"user_id"`
	Type                JioType   `json:"type" db:"type"`
	NumPasses           int       `json:"numPasses" db:"num_passes"`
	Price               *float64  `json:"price" db:"price"`
	GymID               int64     `json:"gymId" db:"gym_id"`
	StartDateTime       time.Time `json:"startDateTime" db:"start_date_time"`
	EndDateTime         time.Time `json:"endDateTime" db:"end_date_time"`
	OpenToClimbTogether bool      `json:"openToClimbTogether" db:"open_to_climb_together"`
	OptionalNote        string    `json:"optionalNote" db:"optional_note"`
	IsClosed            bool      `json:"isClosed" db:"is_closed"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`

	// 关联数据（读取时填充）
	Gym            *Gym         `json:"gym,omitempty" db:"-"`
	Timings        []Timing     `json:"timings,omitempty" db:"-"`
	CreatorProfile *UserProfile `json:"creatorProfile,omitempty" db:"-"`
}

// IsBuy mirrors the legacy boolean view of Type; nil for "other".
func (j Jio) IsBuy() *bool {
	switch j.Type {
	case JioTypeBuyer:
		v := true
		return &v
	case JioTypeSeller:
		v := false
		return &v
	}
	return nil
}

// MarshalJSON adds the derived isBuy field
func (j Jio) MarshalJSON() ([]byte, error) {
	type alias Jio
	return json.Marshal(struct {
		alias
		IsBuy *bool `json:"isBuy"`
	}{alias: alias(j), IsBuy: j.IsBuy()})
}

// CreateJioRequest 创建Jio的请求体（id/userId/isClosed 由服务端决定）
type CreateJioRequest struct {
	Type                JioType   `json:"type" validate:"required,jiotype"`
	NumPasses           int       `json:"numPasses" validate:"required,gt=0"`
	Price               *float64  `json:"price" validate:"omitempty,gte=0"`
	GymID               int64     `json:"gymId" validate:"required,gt=0"`
	StartDateTime       *DateTime `json:"startDateTime" validate:"required"`
	EndDateTime         *DateTime `json:"endDateTime" validate:"required"`
	OpenToClimbTogether bool      `json:"openToClimbTogether"`
	OptionalNote        string    `json:"optionalNote" validate:"max=500"`
}

// PatchJioRequest is a partial update; nil fields are left untouched.
type PatchJioRequest struct {
	Type                *JioType  `json:"type,omitempty" validate:"omitempty,jiotype"`
	NumPasses           *int      `json:"numPasses,omitempty" validate:"omitempty,gt=0"`
	Price               *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	GymID               *int64    `json:"gymId,omitempty" validate:"omitempty,gt=0"`
	StartDateTime       *DateTime `json:"startDateTime,omitempty"`
	EndDateTime         *DateTime `json:"endDateTime,omitempty"`
	OpenToClimbTogether *bool     `json:"openToClimbTogether,omitempty"`
	OptionalNote        *string   `json:"optionalNote,omitempty" validate:"omitempty,max=500"`
	IsClosed            *bool     `json:"isClosed,omitempty"`
}

// ToPatchMap converts the request into a column -> value map.
// Allowed keys: "type","num_passes","price","gym_id","start_date_time","end_date_time",
// "open_to_climb_together","optional_note","is_closed".
func (p PatchJioRequest) ToPatchMap() map[string]interface{} {
	patch := make(map[string]interface{}, 9)
	if p.Type != nil {
		patch["type"] = string(*p.Type)
	}
	if p.NumPasses != nil {
		patch["num_passes"] = *p.NumPasses
	}
	if p.Price != nil {
		patch["price"] = *p.Price
	}
	if p.GymID != nil {
		patch["gym_id"] = *p.GymID
	}
	if p.StartDateTime != nil {
		patch["start_date_time"] = p.StartDateTime.Time
	}
	if p.EndDateTime != nil {
		patch["end_date_time"] = p.EndDateTime.Time
	}
	if p.OpenToClimbTogether != nil {
		patch["open_to_climb_together"] = *p.OpenToClimbTogether
	}
	if p.OptionalNote != nil {
		patch["optional_note"] = *p.OptionalNote
	}
	if p.IsClosed != nil {
		patch["is_closed"] = *p.IsClosed
	}
	return patch
}

// SearchJioRequest 搜索条件（全部可选）
type SearchJioRequest struct {
	GymID               *int64     `json:"gymId" validate:"omitempty,gt=0"`
	Type                *JioType   `json:"type" validate:"omitempty,jiotype"`
	Date                *time.Time `json:"date"`
	StartDateTime       *DateTime  `json:"startDateTime"`
	EndDateTime         *DateTime  `json:"endDateTime"`
	OpenToClimbTogether *bool      `json:"openToClimbTogether"`
	NumPasses           *int       `json:"numPasses" validate:"omitempty,gt=0"`
}

// JioFilter is the repository-level search filter. Bounds are inclusive.
type JioFilter struct {
	GymID               *int64
	Type                *JioType
	StartsFrom          time.Time  // upcoming cut-off, always applied
	DayStart            *time.Time // [DayStart, DayEnd) when a date is given
	DayEnd              *time.Time
	StartAfter          *time.Time // jio start >= StartAfter
	EndBefore           *time.Time // jio end <= EndBefore
	OpenToClimbTogether *bool
	MinPasses           *int
}

// DateTime accepts RFC3339 as well as the offset-less forms the web client sends
// ("2030-01-01T09:00"). Offset-less values are read in time.Local.
type DateTime struct {
	time.Time
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime parses s using the accepted layouts.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateTime{t}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return DateTime{t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid datetime %q", s)
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) *DateTime {
	return &DateTime{t}
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
