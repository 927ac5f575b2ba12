package database

import (
	"context"
	"fmt"

	"jios-backend/pkg/models"

	"github.com/sirupsen/logrus"
)

// DefaultGyms 初始健身房目录
var DefaultGyms = []models.Gym{
	{Name: "Ark Bloc", Address: "2 Jurong East Street 21, #03-01", Website: "https://www.arkbloc.com"},
	{Name: "BFF Climb Bendemeer", Address: "2 Kallang Avenue, CT Hub, #01-20", Website: "https://www.bffclimb.com"},
	{Name: "Boulder Planet Sembawang", Address: "604 Sembawang Road, #01-22", Website: "https://www.boulderplanet.sg"},
	{Name: "Boulder+ Aperia", Address: "12 Kallang Avenue, Aperia Mall, #03-17", Website: "https://www.boulderplus.sg"},
	{Name: "Climb Central Funan", Address: "107 North Bridge Road, Funan, #B2-19", Website: "https://www.climbcentral.sg"},
	{Name: "Fit Bloc Kent Ridge", Address: "87 Science Park Drive, #01-01", Website: "https://www.fitbloc.com"},
	{Name: "Lighthouse Climbing", Address: "44 Kallang Place, #03-01", Website: "https://www.lighthouseclimbing.com"},
	{Name: "Origin Boulder Bukit Timah", Address: "1 Beauty World Plaza, #04-01", Website: "https://www.originclimbing.sg"},
}

// DefaultTimings 常用时段
var DefaultTimings = []models.Timing{
	{Name: "Morning", StartTime: "09:00", EndTime: "12:00"},
	{Name: "Afternoon", StartTime: "12:00", EndTime: "18:00"},
	{Name: "Evening", StartTime: "18:00", EndTime: "23:00"},
}

// Seed inserts the default gym directory and timings. Safe to run repeatedly.
func Seed(ctx context.Context, db *SQLDatabase) error {
	for i := range DefaultGyms {
		gym := DefaultGyms[i]
		if err := db.CreateGym(ctx, &gym); err != nil {
			return fmt.Errorf("seed gym %q: %w", gym.Name, err)
		}
	}
	for i := range DefaultTimings {
		timing := DefaultTimings[i]
		if err := db.CreateTiming(ctx, &timing); err != nil {
			return fmt.Errorf("seed timing %q: %w", timing.Name, err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"gyms":    len(DefaultGyms),
		"timings": len(DefaultTimings),
	}).Info("🌱 Seed data ensured")
	return nil
}
