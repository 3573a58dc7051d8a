package openmeteo

// ForecastResponse is the weather forecast payload. Every value array is
// positionally aligned with the time array of its block; elements may be null.
type ForecastResponse struct {
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	Elevation        float64            `json:"elevation"`
	Timezone         string             `json:"timezone"`
	UTCOffsetSeconds int                `json:"utc_offset_seconds"`
	Hourly           HourlyWeatherBlock `json:"hourly"`
	Daily            DailyWeatherBlock  `json:"daily"`
}

// HourlyWeatherBlock holds the hourly weather time series.
type HourlyWeatherBlock struct {
	Time                     []string   `json:"time"`
	Temperature2M            []*float64 `json:"temperature_2m"`
	ApparentTemperature      []*float64 `json:"apparent_temperature"`
	RelativeHumidity2M       []*float64 `json:"relative_humidity_2m"`
	Dewpoint2M               []*float64 `json:"dewpoint_2m"`
	Precipitation            []*float64 `json:"precipitation"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	Rain                     []*float64 `json:"rain"`
	WindSpeed10M             []*float64 `json:"wind_speed_10m"`
	WindDirection10M         []*float64 `json:"wind_direction_10m"`
	WindGusts10M             []*float64 `json:"wind_gusts_10m"`
	WeatherCode              []*int     `json:"weather_code"`
	CloudCover               []*float64 `json:"cloud_cover"`
	Visibility               []*float64 `json:"visibility"`
	SurfacePressure          []*float64 `json:"surface_pressure"`
	UVIndex                  []*float64 `json:"uv_index"`
}

// DailyWeatherBlock holds the daily weather time series.
type DailyWeatherBlock struct {
	Time                        []string   `json:"time"`
	Temperature2MMax            []*float64 `json:"temperature_2m_max"`
	Temperature2MMin            []*float64 `json:"temperature_2m_min"`
	ApparentTemperatureMax      []*float64 `json:"apparent_temperature_max"`
	ApparentTemperatureMin      []*float64 `json:"apparent_temperature_min"`
	PrecipitationSum            []*float64 `json:"precipitation_sum"`
	PrecipitationHours          []*float64 `json:"precipitation_hours"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	RainSum                     []*float64 `json:"rain_sum"`
	WindSpeed10MMax             []*float64 `json:"wind_speed_10m_max"`
	WindGusts10MMax             []*float64 `json:"wind_gusts_10m_max"`
	WindDirection10MDominant    []*float64 `json:"wind_direction_10m_dominant"`
	WeatherCode                 []*int     `json:"weather_code"`
	Sunrise                     []*string  `json:"sunrise"`
	Sunset                      []*string  `json:"sunset"`
	UVIndexMax                  []*float64 `json:"uv_index_max"`
}

// AirQualityResponse is the air-quality forecast payload.
type AirQualityResponse struct {
	Latitude         float64               `json:"latitude"`
	Longitude        float64               `json:"longitude"`
	Timezone         string                `json:"timezone"`
	UTCOffsetSeconds int                   `json:"utc_offset_seconds"`
	Hourly           HourlyAirQualityBlock `json:"hourly"`
}

// HourlyAirQualityBlock holds the hourly air-quality time series.
type HourlyAirQualityBlock struct {
	Time            []string   `json:"time"`
	PM25            []*float64 `json:"pm2_5"`
	PM10            []*float64 `json:"pm10"`
	Dust            []*float64 `json:"dust"`
	CarbonMonoxide  []*float64 `json:"carbon_monoxide"`
	NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  []*float64 `json:"sulphur_dioxide"`
	Ozone           []*float64 `json:"ozone"`
	USAQI           []*float64 `json:"us_aqi"`
	EuropeanAQI     []*float64 `json:"european_aqi"`
	USAQIPM25       []*float64 `json:"us_aqi_pm2_5"`
	USAQIPM10       []*float64 `json:"us_aqi_pm10"`
}
