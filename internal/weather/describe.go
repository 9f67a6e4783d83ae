package weather

// Condition labels returned by DescribeConditions.
const (
	LabelRainy    = "Rainy"
	LabelFreezing = "Freezing"
	LabelHot      = "Hot"
	LabelWindy    = "Windy"
	LabelHumid    = "Humid"
	LabelCold     = "Cold"
	LabelWarm     = "Warm"
	LabelMild     = "Mild"
)

// DescribeConditions turns metrics into a short human label.
// Rules are checked in a fixed order and the first match wins; missing
// metrics read as 0.
func DescribeConditions(m Metrics) string {
	temp := m.valueOrZero(SourceTemperature)
	humidity := m.valueOrZero(SourceHumidity)
	wind := m.valueOrZero(SourceWindSpeed)
	precip := m.valueOrZero(SourcePrecipitation)

	switch {
	case precip > 5:
		return LabelRainy
	case temp < 0:
		return LabelFreezing
	case temp > 30:
		return LabelHot
	case wind > 20:
		return LabelWindy
	case humidity > 80:
		return LabelHumid
	case temp < 10:
		return LabelCold
	case temp > 25:
		return LabelWarm
	default:
		return LabelMild
	}
}
