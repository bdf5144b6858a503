package database_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) database.Client {
	t.Helper()

	dbname := filepath.Join(t.TempDir(), "bakuwaki.db")
	require.NoError(t, database.StormInit(dbname))

	db, err := database.StormOpen(dbname)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbname)
	})
	return db
}

func TestMoonAge(t *testing.T) {
	db := open(t)

	_, err := db.FindMoonAge("2024-05-01")
	assert.True(t, db.IsNotFound(err))

	age := &model.MoonAge{Date: "2024-05-01", Age: 22.4}
	require.NoError(t, db.Save(age))
	assert.NotEmpty(t, age.ID)
	assert.False(t, age.CreatedAt.IsZero())

	found, err := db.FindMoonAge("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 22.4, found.Age)

	found.Age = 22.5
	require.NoError(t, db.Save(found))

	found, err = db.FindMoonAge("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 22.5, found.Age)
	assert.Equal(t, age.ID, found.ID)
}

func TestForecasts(t *testing.T) {
	db := open(t)

	forecasts, err := db.ListForecasts()
	require.NoError(t, err)
	assert.Empty(t, forecasts)

	for _, day := range []string{"2024-05-02", "2024-05-01", "2024-05-03"} {
		err := db.Save(&model.Forecast{
			IssuedOn: day,
			Predictions: []*model.Prediction{
				{Date: day, PredictedAmount: 1.5},
			},
		})
		require.NoError(t, err)
	}

	forecasts, err = db.ListForecasts()
	require.NoError(t, err)
	require.Len(t, forecasts, 3)
	assert.Equal(t, "2024-05-03", forecasts[0].IssuedOn)
	assert.Equal(t, "2024-05-01", forecasts[2].IssuedOn)

	forecast, err := db.FindForecast("2024-05-02")
	require.NoError(t, err)
	require.Len(t, forecast.Predictions, 1)
	assert.Equal(t, 1.5, forecast.Predictions[0].PredictedAmount)

	n, err := db.DeleteForecastsBefore("2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = db.FindForecast("2024-05-02")
	assert.True(t, db.IsNotFound(err))

	n, err = db.DeleteForecastsBefore("2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStormOpenLocked(t *testing.T) {
	dbname := filepath.Join(t.TempDir(), "bakuwaki.db")

	db, err := database.StormOpen(dbname)
	require.NoError(t, err)
	defer db.Close()

	timeout := database.LockTimeout
	database.LockTimeout = 50 * time.Millisecond
	defer func() { database.LockTimeout = timeout }()

	start := time.Now()
	_, err = database.StormOpen(dbname)
	assert.ErrorContains(t, err, "could not get database connection")
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Error(t, database.StormInit(dbname))
	assert.Error(t, database.StormReIndex(dbname))
}
