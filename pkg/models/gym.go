package models

// Gym represents a climbing gym (table: gyms)
type Gym struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Address string `json:"address,omitempty" db:"address"`
	Website string `json:"website,omitempty" db:"website"`
}

// Timing 常用时段，例如 "Morning 09:00-12:00" (table: timings)
type Timing struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	StartTime string `json:"startTime" db:"start_time"`
	EndTime   string `json:"endTime" db:"end_time"`
}
