package database

import (
	"github.com/mdouchement/bakuwaki/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is nil or a not found error.
		IsNotFound(err error) bool

		MoonAgeInteraction
		ForecastInteraction
	}

	// A MoonAgeInteraction defines all the methods used to interact with a moon age record.
	MoonAgeInteraction interface {
		FindMoonAge(date string) (*model.MoonAge, error)
	}

	// A ForecastInteraction defines all the methods used to interact with a forecast record.
	ForecastInteraction interface {
		ListForecasts() ([]*model.Forecast, error)
		FindForecast(issuedOn string) (*model.Forecast, error)
		DeleteForecastsBefore(issuedOn string) (int, error)
	}
)
