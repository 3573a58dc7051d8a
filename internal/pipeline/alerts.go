package pipeline

import (
	"fmt"
	"time"

	"github.com/aridwatch/aridwatch/internal/config"
)

// dateLayout is the calendar-date format of daily aggregate keys.
const dateLayout = "2006-01-02"

// GenerateAlerts evaluates the alert rule table against each daily record
// independently. A single day can yield several alerts across categories;
// within the AQI category only the highest exceeded tier fires. All
// comparisons are strict greater-than.
func GenerateAlerts(records []DailyAggregateRecord, cityID, cityName string, thresholds config.Thresholds) []Alert {
	var alerts []Alert

	for _, record := range records {
		startsAt, expiresAt, err := validityWindow(record.Date)
		if err != nil {
			continue
		}

		newAlert := func(alertType AlertType, severity Severity, title, description string, value, threshold float64) Alert {
			return Alert{
				CityID:      cityID,
				Type:        alertType,
				Severity:    severity,
				Title:       title,
				Description: description,
				Value:       value,
				Threshold:   threshold,
				StartsAt:    startsAt,
				ExpiresAt:   expiresAt,
				IsActive:    true,
			}
		}

		if record.TempMax != nil && *record.TempMax > thresholds.HeatwaveTempC {
			severity := SeverityHigh
			prefix := ""
			if *record.TempMax > thresholds.ExtremeHeatTempC {
				severity = SeverityExtreme
				prefix = "Severe "
			}
			alerts = append(alerts, newAlert(
				AlertHeatwave, severity,
				fmt.Sprintf("%sHeatwave Alert - %s", prefix, cityName),
				fmt.Sprintf(
					"Temperature expected to reach %.1f°C on %s. Stay hydrated, avoid outdoor exposure between 11 AM - 4 PM.",
					*record.TempMax, record.Date,
				),
				*record.TempMax, thresholds.HeatwaveTempC,
			))
		}

		if record.IsDustStormRisk {
			alerts = append(alerts, newAlert(
				AlertDustStorm, SeverityHigh,
				fmt.Sprintf("Dust Storm Risk - %s", cityName),
				fmt.Sprintf(
					"High dust concentration (%.0f µg/m³) with strong winds (%.0f km/h). Thar Desert dust advisory in effect.",
					deref(record.DustMean), deref(record.WindSpeedMax),
				),
				deref(record.DustMean), thresholds.DustStormDust,
			))
		}

		if record.PrecipitationSum > thresholds.HeavyRainMM {
			severity := SeverityHigh
			prefix := ""
			if record.PrecipitationSum > thresholds.VeryHeavyRainMM {
				severity = SeverityExtreme
				prefix = "Very "
			}
			description := fmt.Sprintf(
				"Expected rainfall: %.1fmm on %s. Waterlogging and flash floods possible.",
				record.PrecipitationSum, record.Date,
			)
			if normals, ok := config.MonsoonNormalRainfall[cityName]; ok {
				if monthly := normals.ForMonth(startsAt.Month()); monthly > 0 {
					description += fmt.Sprintf(" Monsoon normal for the month: %.0fmm.", monthly)
				}
			}
			alerts = append(alerts, newAlert(
				AlertHeavyRain, severity,
				fmt.Sprintf("%sHeavy Rain - %s", prefix, cityName),
				description,
				record.PrecipitationSum, thresholds.HeavyRainMM,
			))
		}

		// AQI is a priority chain: only the highest exceeded tier fires.
		if aqi := record.AQIMax; aqi != nil {
			switch {
			case *aqi > thresholds.HazardousAQI:
				alerts = append(alerts, newAlert(
					AlertHazardousAQI, SeverityExtreme,
					fmt.Sprintf("Hazardous Air Quality - %s", cityName),
					fmt.Sprintf(
						"US AQI: %.0f. Health emergency. Avoid all outdoor activity. Wear N95 masks if going outside.",
						*aqi,
					),
					*aqi, thresholds.HazardousAQI,
				))
			case *aqi > thresholds.VeryPoorAQI:
				alerts = append(alerts, newAlert(
					AlertVeryPoorAQI, SeverityHigh,
					fmt.Sprintf("Very Poor Air Quality - %s", cityName),
					fmt.Sprintf("US AQI: %.0f. Unhealthy for everyone. Reduce outdoor activities.", *aqi),
					*aqi, thresholds.VeryPoorAQI,
				))
			case *aqi > thresholds.PoorAQI:
				alerts = append(alerts, newAlert(
					AlertPoorAQI, SeverityModerate,
					fmt.Sprintf("Moderate Air Quality Concern - %s", cityName),
					fmt.Sprintf("US AQI: %.0f. Sensitive groups should reduce outdoor exertion.", *aqi),
					*aqi, thresholds.PoorAQI,
				))
			}
		}

		if record.UVIndexMax != nil && *record.UVIndexMax > thresholds.HighUVIndex {
			alerts = append(alerts, newAlert(
				AlertHighUV, SeverityModerate,
				fmt.Sprintf("Very High UV Index - %s", cityName),
				fmt.Sprintf("UV Index: %.1f. Apply SPF 30+ sunscreen, wear protective clothing.", *record.UVIndexMax),
				*record.UVIndexMax, thresholds.HighUVIndex,
			))
		}
	}

	return alerts
}

// validityWindow spans the full UTC calendar day of the given date.
func validityWindow(date string) (startsAt, expiresAt time.Time, err error) {
	startsAt, err = time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	expiresAt = startsAt.Add(24*time.Hour - time.Second)
	return startsAt, expiresAt, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
