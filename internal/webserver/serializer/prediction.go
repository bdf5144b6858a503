package serializer

import (
	"github.com/mdouchement/bakuwaki/internal/model"
)

// Predictions returns the serialized form of the given models.
func Predictions(predictions []*model.Prediction) []map[string]interface{} {
	sl := make([]map[string]interface{}, 0, len(predictions))

	for _, prediction := range predictions {
		sl = append(sl, Prediction(prediction))
	}

	return sl
}

// Prediction returns the serialized form of the given model.
func Prediction(prediction *model.Prediction) map[string]interface{} {
	return map[string]interface{}{
		"date":                          prediction.Date,
		"predicted_amount":              prediction.PredictedAmount,
		"moon_age":                      prediction.MoonAge,
		"weather_code":                  prediction.WeatherCode,
		"temperature_max":               prediction.TemperatureMax,
		"temperature_min":               prediction.TemperatureMin,
		"precipitation_probability_max": prediction.PrecipitationProbabilityMax,
		"dominant_wind_direction":       prediction.DominantWindDirection,
	}
}

// Forecasts returns the summary of the given models.
func Forecasts(forecasts []*model.Forecast) []map[string]interface{} {
	sl := make([]map[string]interface{}, 0, len(forecasts))

	for _, forecast := range forecasts {
		sl = append(sl, map[string]interface{}{
			"issued_on":   forecast.IssuedOn,
			"computed_at": forecast.ComputedAt,
		})
	}

	return sl
}

// Forecast returns the serialized form of the given model.
func Forecast(forecast *model.Forecast) map[string]interface{} {
	return map[string]interface{}{
		"issued_on":   forecast.IssuedOn,
		"computed_at": forecast.ComputedAt,
		"predictions": Predictions(forecast.Predictions),
	}
}
